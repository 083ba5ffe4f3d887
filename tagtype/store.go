package tagtype

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Storage keys and file names.
const (
	StorageVersion     = 1
	StorageKey         = "opendisplay_tagtypes"
	LegacyStorageKey   = "open_display_tagtypes"
	LegacyTagTypesFile = "open_display_tagtypes.json"
	storageFileSuffix  = ".json"
)

// Payload is the persisted form of the registry.
type Payload struct {
	Version    int                        `json:"version"`
	LastUpdate string                     `json:"last_update"`
	TagTypes   map[string]json.RawMessage `json:"tag_types"`
}

// Store persists a Payload. Load returns nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*Payload, error)
	Save(ctx context.Context, p *Payload) error
	Remove(ctx context.Context) error
}

// FileStore keeps a payload as a JSON document at <dir>/<key>.json on any
// storage afs can address.
type FileStore struct {
	fs  afs.Service
	dir string
	key string
}

// NewFileStore returns a store for key under dir. fs may be nil.
func NewFileStore(fs afs.Service, dir, key string) *FileStore {
	if fs == nil {
		fs = afs.New()
	}
	return &FileStore{fs: fs, dir: dir, key: key}
}

// URL returns the location of the stored document.
func (s *FileStore) URL() string {
	return url.Join(s.dir, s.key+storageFileSuffix)
}

// Load reads the payload.
func (s *FileStore) Load(ctx context.Context) (*Payload, error) {
	URL := s.URL()
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("tagtype: check %s: %w", URL, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("tagtype: read %s: %w", URL, err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("tagtype: decode %s: %w", URL, err)
	}
	return &p, nil
}

// Save writes the payload, creating the directory if needed.
func (s *FileStore) Save(ctx context.Context, p *Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("tagtype: encode payload: %w", err)
	}
	exists, err := s.fs.Exists(ctx, s.dir)
	if err != nil {
		return fmt.Errorf("tagtype: check %s: %w", s.dir, err)
	}
	if !exists {
		if err := s.fs.Create(ctx, s.dir, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("tagtype: create %s: %w", s.dir, err)
		}
	}
	URL := s.URL()
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("tagtype: write %s: %w", URL, err)
	}
	return nil
}

// Remove deletes the stored document. Removing a missing document is not an
// error.
func (s *FileStore) Remove(ctx context.Context) error {
	return removeIfExists(ctx, s.fs, s.URL())
}

func removeIfExists(ctx context.Context, fs afs.Service, URL string) error {
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("tagtype: check %s: %w", URL, err)
	}
	if !exists {
		return nil
	}
	if err := fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("tagtype: delete %s: %w", URL, err)
	}
	return nil
}
