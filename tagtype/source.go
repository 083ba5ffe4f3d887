package tagtype

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Locations of the upstream definitions.
const (
	GitHubAPIURL = "https://api.github.com/repos/OpenEPaperLink/OpenEPaperLink/contents/resources/tagtypes"
	GitHubRawURL = "https://raw.githubusercontent.com/OpenEPaperLink/OpenEPaperLink/master/resources/tagtypes"
)

// maxDefinitionSize bounds a single downloaded definition or listing.
const maxDefinitionSize = 4 << 20

// Entry is one file of the upstream definitions directory.
type Entry struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// Source lists and downloads raw tag type definitions.
type Source interface {
	List(ctx context.Context) ([]Entry, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// GitHubSource reads definitions through the GitHub contents API.
type GitHubSource struct {
	APIURL string
	Client *http.Client
}

// NewGitHubSource returns a source for the OpenEPaperLink repository using an
// HTTP client with the given overall timeout.
func NewGitHubSource(timeout time.Duration) *GitHubSource {
	return &GitHubSource{
		APIURL: GitHubAPIURL,
		Client: newHTTPClient(timeout),
	}
}

// List returns the directory listing. Any status other than 200 is an error.
func (s *GitHubSource) List(ctx context.Context) ([]Entry, error) {
	body, err := s.get(ctx, s.APIURL, "application/vnd.github.v3+json")
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("tagtype: decode listing: %w", err)
	}
	return entries, nil
}

// Download fetches one raw definition.
func (s *GitHubSource) Download(ctx context.Context, url string) ([]byte, error) {
	return s.get(ctx, url, "")
}

func (s *GitHubSource) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tagtype: build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tagtype: GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tagtype: GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDefinitionSize))
	if err != nil {
		return nil, fmt.Errorf("tagtype: read %s: %w", url, err)
	}
	return body, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		},
	}
}

// ParseTypeID extracts the hardware type id from a definition filename.
// The base name is read as hexadecimal first, then as decimal, so "2E.json"
// is 46 and "10.json" is 16. A 0x prefix is allowed.
func ParseTypeID(filename string) (int, error) {
	if !strings.HasSuffix(filename, ".json") {
		return 0, fmt.Errorf("tagtype: %q is not a .json file", filename)
	}
	base := strings.TrimSuffix(filename, ".json")
	hex := strings.TrimPrefix(strings.TrimPrefix(base, "0x"), "0X")
	if id, err := strconv.ParseInt(hex, 16, 32); err == nil && id >= 0 {
		return int(id), nil
	}
	if id, err := strconv.Atoi(base); err == nil && id >= 0 {
		return id, nil
	}
	return 0, fmt.Errorf("tagtype: cannot parse type id from %q", filename)
}
