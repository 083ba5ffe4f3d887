package tagtype

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	tt, err := New(7, []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, 7, tt.TypeID)
	assert.Equal(t, DefaultVersion, tt.Version)
	assert.Equal(t, "Unknown Type 7", tt.Name)
	assert.Equal(t, 296, tt.Width)
	assert.Equal(t, 128, tt.Height)
	assert.Equal(t, 0, tt.RotateBuffer)
	assert.Equal(t, 2, tt.BPP)
	assert.Equal(t, 2, tt.ShortLUT)
	assert.Equal(t, []string{"white", "black", "red"}, tt.ColorTable.Names())
	assert.Empty(t, tt.Options)
	assert.Empty(t, tt.ContentIDs)
	assert.JSONEq(t, `{}`, string(tt.Template))
	assert.Nil(t, tt.UseTemplate)
	assert.Nil(t, tt.ZlibCompression)
	assert.False(t, tt.SupportsCompression())
}

func TestNewReadsUpstreamDefinition(t *testing.T) {
	raw := `{
		"version": 3,
		"name": "M3 4.2\" BWY",
		"width": 400,
		"height": 300,
		"rotatebuffer": 1,
		"bpp": 2,
		"colortable": {"white": [255,255,255], "black": [0,0,0], "yellow": [255,255,0]},
		"shortlut": 0,
		"options": ["button", "led"],
		"contentids": [22, 1, 2],
		"template": {"21": {"title": [10, 10]}},
		"usetemplate": 1,
		"zlib_compression": "27"
	}`
	tt, err := New(60, []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, `M3 4.2" BWY`, tt.Name)
	assert.Equal(t, 1, tt.RotateBuffer)
	assert.Equal(t, 0, tt.ShortLUT)
	assert.Equal(t, []string{"white", "black", "yellow"}, tt.ColorTable.Names())
	assert.Equal(t, []string{"button", "led"}, tt.Options)
	assert.Equal(t, []int{22, 1, 2}, tt.ContentIDs)
	assert.True(t, tt.SupportsCompression())
	assert.True(t, tt.HasColor("yellow"))
	assert.False(t, tt.HasColor("red"))

	w, h := tt.BufferSize()
	assert.Equal(t, 300, w)
	assert.Equal(t, 400, h)
}

func TestNewRejectsNonObject(t *testing.T) {
	for _, raw := range []string{``, `[]`, `"x"`, `{bad`} {
		_, err := New(1, []byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestStoredRoundTripAndAliases(t *testing.T) {
	orig, err := New(1, []byte(`{"version":5,"name":"M2 2.9\"","width":296,"height":128,"shortlut":1,"contentids":[4]}`))
	require.NoError(t, err)

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "shortlut")
	assert.Contains(t, m, "contentids")
	assert.JSONEq(t, `null`, string(m["usetemplate"]))

	got := &TagType{TypeID: 1}
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, orig, got)

	// Older payloads spelled a couple of keys differently.
	alias := &TagType{TypeID: 9}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","short_lut":3,"content_ids":[1,2]}`), alias))
	assert.Equal(t, 3, alias.ShortLUT)
	assert.Equal(t, []int{1, 2}, alias.ContentIDs)
	assert.Equal(t, 9, alias.TypeID)
}

func TestValidDefinition(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"complete", `{"version":1,"name":"a","width":1,"height":1}`, true},
		{"missing height", `{"version":1,"name":"a","width":1}`, false},
		{"missing version", `{"name":"a","width":1,"height":1}`, false},
		{"not an object", `[1,2]`, false},
		{"invalid json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidDefinition([]byte(tt.raw)))
		})
	}
}

func TestColorTableKeepsOrder(t *testing.T) {
	var ct ColorTable
	require.NoError(t, json.Unmarshal([]byte(`{"black":[0,0,0],"white":[255,255,255],"red":[255,0,0],"yellow":[255,255,0]}`), &ct))
	assert.Equal(t, []string{"black", "white", "red", "yellow"}, ct.Names())
	assert.Equal(t, 3, ct.Index("yellow"))
	assert.Equal(t, -1, ct.Index("blue"))

	out, err := json.Marshal(ct)
	require.NoError(t, err)
	assert.Equal(t, `{"black":[0,0,0],"white":[255,255,255],"red":[255,0,0],"yellow":[255,255,0]}`, string(out))
}

func TestEmptyColorTableIsKept(t *testing.T) {
	tt, err := New(7, []byte(`{"name":"blank","colortable":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, tt.ColorTable)
	assert.Empty(t, tt.ColorTable)

	out, err := json.Marshal(tt)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"colortable":{}`)

	missing, err := New(7, []byte(`{"name":"default"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"white", "black", "red"}, missing.ColorTable.Names())
}

func TestColorTableRejectsBadEntries(t *testing.T) {
	for _, raw := range []string{`[1]`, `{"red":[1,2]}`, `{"red":[256,0,0]}`, `{"red":"x"}`} {
		var ct ColorTable
		assert.Error(t, json.Unmarshal([]byte(raw), &ct), raw)
	}
}

func TestFallback(t *testing.T) {
	types := Fallback()
	assert.Len(t, types, 93)

	m2 := types[1]
	require.NotNil(t, m2)
	assert.Equal(t, `M2 2.9"`, m2.Name)
	assert.Equal(t, 5, m2.Version)
	assert.Equal(t, 296, m2.Width)
	assert.Equal(t, 2, m2.BPP)

	assert.False(t, types[240].HasFramebuffer())
	assert.False(t, types[250].HasFramebuffer())
	assert.Equal(t, 1360, types[227].Width)
}

func TestParseTypeID(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"2E.json", 46, false},
		{"10.json", 16, false},
		{"ff.json", 255, false},
		{"0.json", 0, false},
		{"0x10.json", 16, false},
		{"0X2e.json", 46, false},
		{"0x.json", 0, true},
		{"readme.md", 0, true},
		{"model.json", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTypeID(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
