package validate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/flavioheleno/opendisplay/cmd/opendisplay/shared"
	"github.com/flavioheleno/opendisplay/drawcustom"
)

const payload = `
- type: text
  value: "Temperature: {{ states('sensor.temperature') }}°C"
  x: 10
  y: 10
  size: 24
  color: black
- type: progress_bar
  x_start: 10
  y_start: 50
  x_end: 286
  y_end: 70
  progress: "{{ states('sensor.battery') | int }}"
  fill: red
  show_percentage: true
- type: icon
  value: mdi:battery-70
  x: 250
  y: 10
  size: 32
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := &cli.Command{
		Name:      "opendisplay",
		Writer:    &out,
		ErrWriter: &errOut,
		Flags:     shared.GlobalFlags(),
		Commands:  []*cli.Command{GetCommand()},
	}
	err := root.Run(context.Background(), append([]string{"opendisplay", "--offline", "--cache-dir", t.TempDir()}, args...))
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	cmd := GetCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "validate", cmd.Name)
	assert.NotEmpty(t, cmd.Usage)
	assert.NotNil(t, cmd.Action)
}

func TestValidatePayload(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "payload.yaml", payload)
	states := writeFile(t, dir, "states.yaml", "sensor.temperature: 21.5\nsensor.battery: 70\n")

	out, err := runCLI(t, "validate", "--type", "1", "--states", states, file)
	require.NoError(t, err)
	assert.Contains(t, out, "3 elements OK")
	assert.Contains(t, out, `M2 2.9"`)
}

func TestValidateWithoutStates(t *testing.T) {
	file := writeFile(t, t.TempDir(), "payload.yaml", payload)

	// Templated progress is not range checked before rendering.
	_, err := runCLI(t, "validate", "--type", "1", file)
	assert.NoError(t, err)
}

func TestValidateTypeFile(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, dir, "2E.json", `{"version":1,"name":"BWY","width":64,"height":32,"colortable":{"white":[255,255,255],"black":[0,0,0],"yellow":[255,255,0]}}`)
	file := writeFile(t, dir, "payload.yaml", `
- {type: text, value: hi, x: 1, y: 1, color: red}
- {type: icon, value: mdi:home, x: 100, y: 1, size: 8}
`)

	out, err := runCLI(t, "validate", "--type-file", def, file)
	assert.ErrorIs(t, err, drawcustom.ErrUnknownColor)
	assert.Contains(t, out, "warning: payload[1]")
}

func TestValidateErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "payload.yaml", payload)

	_, err := runCLI(t, "validate", "--type", "1")
	assert.Error(t, err, "payload file is required")

	_, err = runCLI(t, "validate", file)
	assert.ErrorContains(t, err, "--type")

	_, err = runCLI(t, "validate", "--type", "1", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "- {type: progress_bar, x_start: 0, y_start: 0, x_end: 5, y_end: 5, progress: 150}\n")
	_, err = runCLI(t, "validate", "--type", "1", bad)
	assert.ErrorIs(t, err, drawcustom.ErrOutOfRange)

	quoted := writeFile(t, dir, "quoted.yaml", "- {type: progress_bar, x_start: 0, y_start: 0, x_end: 5, y_end: 5, progress: \"150\"}\n")
	_, err = runCLI(t, "validate", "--type", "1", quoted)
	assert.ErrorIs(t, err, drawcustom.ErrOutOfRange)

	word := writeFile(t, dir, "word.yaml", "- {type: progress_bar, x_start: 0, y_start: 0, x_end: 5, y_end: 5, progress: abc}\n")
	_, err = runCLI(t, "validate", "--type", "1", word)
	assert.ErrorIs(t, err, drawcustom.ErrInvalidValue)
}
