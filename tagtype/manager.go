package tagtype

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CacheDuration is how long fetched definitions are trusted before a refresh
// is attempted.
const CacheDuration = 48 * time.Hour

const instrumentationName = "github.com/flavioheleno/opendisplay/tagtype"

// ErrUnknownType is returned for hardware ids without a definition.
var ErrUnknownType = errors.New("tagtype: unknown type")

// Option configures a Manager.
type Option func(*Manager)

// WithSource replaces the upstream definition source.
func WithSource(s Source) Option {
	return func(m *Manager) { m.source = s }
}

// WithStore replaces the store the registry is persisted to.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithLegacyStore sets the store migrated from on first load.
func WithLegacyStore(s Store) Option {
	return func(m *Manager) { m.legacyStore = s }
}

// WithLegacyFile sets the flat legacy file removed once a fresh load is done.
func WithLegacyFile(URL string) Option {
	return func(m *Manager) { m.legacyFile = URL }
}

// WithCacheDuration overrides CacheDuration.
func WithCacheDuration(d time.Duration) Option {
	return func(m *Manager) { m.cacheDuration = d }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithFS sets the afs service used for the default stores and the legacy
// file.
func WithFS(fs afs.Service) Option {
	return func(m *Manager) { m.fs = fs }
}

// Manager loads, caches, refreshes and persists tag type definitions.
//
// Reads (Dimensions, Name, Known, All) never block on the network; they see
// whatever was loaded last. EnsureLoaded and Info do the loading and are
// serialized against each other.
type Manager struct {
	source        Source
	store         Store
	legacyStore   Store
	legacyFile    string
	fs            afs.Service
	cacheDuration time.Duration
	now           func() time.Time
	log           *slog.Logger
	tracer        trace.Tracer

	loadMu sync.Mutex

	mu         sync.RWMutex
	types      map[int]*TagType
	lastUpdate time.Time
}

// NewManager returns a Manager rooted at configDir. Unless overridden by
// options, definitions are persisted under <configDir>/.storage and fetched
// from GitHub.
func NewManager(configDir string, opts ...Option) *Manager {
	m := &Manager{
		cacheDuration: CacheDuration,
		now:           time.Now,
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:        otel.Tracer(instrumentationName),
		types:         map[int]*TagType{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.fs == nil {
		m.fs = afs.New()
	}
	if m.source == nil {
		m.source = NewGitHubSource(30 * time.Second)
	}
	if configDir != "" {
		storageDir := url.Join(configDir, ".storage")
		if m.store == nil {
			m.store = NewFileStore(m.fs, storageDir, StorageKey)
		}
		if m.legacyStore == nil {
			m.legacyStore = NewFileStore(m.fs, storageDir, LegacyStorageKey)
		}
		if m.legacyFile == "" {
			m.legacyFile = url.Join(configDir, LegacyTagTypesFile)
		}
	}
	m.log.Debug("tagtype.manager.created", "config_dir", configDir)
	return m
}

// EnsureLoaded makes sure definitions are loaded and not older than the cache
// duration. After it returns, the registry is never empty: stored, fetched or
// fallback definitions are in place. A failed refresh keeps what is loaded.
func (m *Manager) EnsureLoaded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if m.empty() {
		m.LoadStored(ctx)
	}
	if m.empty() {
		m.log.Error("tagtype.load.empty", "msg", "no tag types after loading, using fallback definitions")
		m.loadFallback()
	}

	m.mu.RLock()
	last := m.lastUpdate
	m.mu.RUnlock()
	if last.IsZero() || m.now().Sub(last) > m.cacheDuration {
		m.log.Debug("tagtype.cache.expired", "last_update", last)
		if !m.fetch(ctx) {
			m.log.Warn("tagtype.refresh.failed", "msg", "using cached or fallback definitions")
		}
	}
	return nil
}

// LoadStored populates the registry from the store, migrating the legacy
// store when needed, and fetches from the source otherwise. If every option
// fails and nothing is loaded, the fallback table is used.
func (m *Manager) LoadStored(ctx context.Context) {
	stored := m.loadStore(ctx, m.store, "store")
	if stored != nil {
		if stored.Version == StorageVersion {
			m.loadPayload(stored)
			return
		}
		m.log.Warn("tagtype.store.version_mismatch", "version", stored.Version, "want", StorageVersion)
	} else if legacy := m.loadStore(ctx, m.legacyStore, "legacy_store"); legacy != nil && legacy.Version == StorageVersion {
		m.loadPayload(legacy)
		m.save(ctx)
		if err := m.legacyStore.Remove(ctx); err != nil {
			m.log.Warn("tagtype.legacy_store.remove", "error", err)
		}
		return
	}

	if !m.fetch(ctx) && m.empty() {
		m.log.Warn("tagtype.fetch.fallback",
			"msg", "failed to fetch tag types and no stored data available, loading fallback definitions")
		m.loadFallback()
	}
	m.cleanupLegacyFile(ctx)
}

// Refresh forces a fetch from the source and reports whether it succeeded.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	return m.fetch(ctx)
}

// Info returns the definition for id, loading definitions first if needed.
func (m *Manager) Info(ctx context.Context, id int) (*TagType, error) {
	if err := m.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	return t, nil
}

// Dimensions returns width and height for id, or 296x128 when unknown.
func (m *Manager) Dimensions(id int) (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return DefaultWidth, DefaultHeight
	}
	return t.Width, t.Height
}

// Name returns the display name for id.
func (m *Manager) Name(id int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[id]
	if !ok {
		return unknownName(id)
	}
	return t.Name
}

// Known reports whether id has a definition.
func (m *Manager) Known(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.types[id]
	return ok
}

// All returns a copy of the registry.
func (m *Manager) All() map[int]*TagType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]*TagType, len(m.types))
	for id, t := range m.types {
		out[id] = t
	}
	return out
}

// IDs returns the known ids in ascending order.
func (m *Manager) IDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.types))
	for id := range m.types {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LastUpdate returns when the loaded definitions were last refreshed.
func (m *Manager) LastUpdate() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdate
}

func (m *Manager) empty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.types) == 0
}

func (m *Manager) loadStore(ctx context.Context, s Store, name string) *Payload {
	if s == nil {
		return nil
	}
	p, err := s.Load(ctx)
	if err != nil {
		m.log.Error("tagtype.load", "store", name, "error", err)
		return nil
	}
	if p == nil || (p.Version == 0 && len(p.TagTypes) == 0) {
		return nil
	}
	return p
}

func (m *Manager) loadPayload(p *Payload) {
	last, err := parseTimestamp(p.LastUpdate)
	if err != nil {
		last = m.now()
	}
	types := make(map[int]*TagType, len(p.TagTypes))
	for key, raw := range p.TagTypes {
		id, err := strconv.Atoi(key)
		if err != nil {
			m.log.Error("tagtype.load.entry", "id", key, "error", err)
			continue
		}
		t := &TagType{TypeID: id}
		if err := json.Unmarshal(raw, t); err != nil {
			m.log.Error("tagtype.load.entry", "id", key, "error", err)
			continue
		}
		types[id] = t
		m.log.Debug("tagtype.loaded", "id", id, "name", t.Name)
	}

	m.mu.Lock()
	m.types = types
	m.lastUpdate = last
	m.mu.Unlock()
	m.log.Info("tagtype.store.loaded", "count", len(types))
}

func (m *Manager) save(ctx context.Context) {
	if m.store == nil {
		return
	}
	m.mu.Lock()
	if m.lastUpdate.IsZero() {
		m.lastUpdate = m.now()
	}
	p := &Payload{
		Version:    StorageVersion,
		LastUpdate: m.lastUpdate.Format(time.RFC3339Nano),
		TagTypes:   make(map[string]json.RawMessage, len(m.types)),
	}
	var encodeErr error
	for id, t := range m.types {
		raw, err := json.Marshal(t)
		if err != nil {
			encodeErr = errors.Join(encodeErr, fmt.Errorf("type %d: %w", id, err))
			continue
		}
		p.TagTypes[strconv.Itoa(id)] = raw
	}
	m.mu.Unlock()

	if encodeErr != nil {
		m.log.Error("tagtype.save.encode", "error", encodeErr)
	}
	if err := m.store.Save(ctx, p); err != nil {
		m.log.Error("tagtype.save", "error", err)
	}
}

// fetch replaces the registry with the definitions found at the source. It
// never loads fallback definitions; callers decide how to handle failure.
func (m *Manager) fetch(ctx context.Context) bool {
	ctx, span := m.tracer.Start(ctx, "tagtype.fetch")
	defer span.End()

	entries, err := m.source.List(ctx)
	if err != nil {
		m.log.Error("tagtype.fetch.list", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return false
	}

	type file struct {
		id  int
		url string
	}
	var files []file
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		id, err := ParseTypeID(e.Name)
		if err != nil {
			m.log.Warn("tagtype.fetch.filename", "name", e.Name, "error", err)
			continue
		}
		files = append(files, file{id: id, url: e.DownloadURL})
	}

	fetched := make(map[int]*TagType, len(files))
	for _, f := range files {
		data, err := m.source.Download(ctx, f.url)
		if err != nil {
			m.log.Error("tagtype.fetch.download", "id", f.id, "error", err)
			continue
		}
		if !json.Valid(data) {
			m.log.Error("tagtype.fetch.invalid_json", "id", f.id)
			continue
		}
		if !ValidDefinition(data) {
			m.log.Debug("tagtype.fetch.incomplete", "id", f.id, "file", path.Base(f.url))
			continue
		}
		t, err := New(f.id, data)
		if err != nil {
			m.log.Error("tagtype.fetch.decode", "id", f.id, "error", err)
			continue
		}
		fetched[f.id] = t
		m.log.Debug("tagtype.fetched", "id", f.id, "name", t.Name)
	}
	span.SetAttributes(
		attribute.Int("tagtype.listed", len(files)),
		attribute.Int("tagtype.loaded", len(fetched)),
	)

	if len(fetched) == 0 {
		m.log.Warn("tagtype.fetch.empty", "msg", "no valid tag definitions found at source")
		span.SetStatus(codes.Error, "no valid definitions")
		return false
	}

	m.mu.Lock()
	m.types = fetched
	m.lastUpdate = m.now()
	m.mu.Unlock()
	m.log.Info("tagtype.fetch.ok", "count", len(fetched))
	m.save(ctx)
	return true
}

func (m *Manager) loadFallback() {
	types := Fallback()
	m.mu.Lock()
	m.types = types
	m.lastUpdate = m.now()
	m.mu.Unlock()
	m.log.Warn("tagtype.fallback.loaded", "count", len(types))
}

func (m *Manager) cleanupLegacyFile(ctx context.Context) {
	if m.legacyFile == "" {
		return
	}
	exists, err := m.fs.Exists(ctx, m.legacyFile)
	if err != nil || !exists {
		return
	}
	if err := m.fs.Delete(ctx, m.legacyFile); err != nil {
		m.log.Error("tagtype.legacy_file.remove", "url", m.legacyFile, "error", err)
		return
	}
	m.log.Info("tagtype.legacy_file.removed", "url", m.legacyFile)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts RFC 3339 and naive ISO-8601 (read as local time).
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("tagtype: empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("tagtype: cannot parse timestamp %q", s)
}
