package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
)

// FileStore keeps one JSON array file per collection under dir. Every write rewrites the whole
// file, so writes to one collection are serialized and the file is swapped in atomically.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewFileStore returns a flat-file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, locks: make(map[string]*sync.RWMutex)}
}

// Init creates the data directory.
func (s *FileStore) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}
	log.Info("flat-file storage ready", "dir", s.dir)
	return nil
}

func (s *FileStore) Close() error { return nil }

// HealthCheck verifies the data directory is still reachable.
func (s *FileStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) Mode() Mode { return ModeFile }

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) lock(collection string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[collection]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[collection] = l
	}
	return l
}

// readFile loads a collection; a missing file is an empty collection.
func readFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// writeFile replaces the collection file through a temp file + rename.
func writeFile[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

type fileRepository[T any, PT EntityPtr[T]] struct {
	store      *FileStore
	collection Collection
}

func (r *fileRepository[T, PT]) load() ([]T, error) {
	return readFile[T](r.store.path(r.collection.Name))
}

func (r *fileRepository[T, PT]) save(records []T) error {
	return writeFile(r.store.path(r.collection.Name), records)
}

func (r *fileRepository[T, PT]) Create(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.store.lock(r.collection.Name)
	l.Lock()
	defer l.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	p := PT(record)
	if p.GetID() == "" {
		p.SetID(NewFileID(r.collection.Prefix))
	}
	for i := range records {
		if PT(&records[i]).GetID() == p.GetID() {
			return fmt.Errorf("%s: duplicate id %s", r.collection.Name, p.GetID())
		}
	}
	stamp(p)
	prePersist(p)

	return r.save(append(records, *record))
}

func (r *fileRepository[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := r.store.lock(r.collection.Name)
	l.RLock()
	defer l.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if PT(&records[i]).GetID() == id {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileRepository[T, PT]) Update(ctx context.Context, record *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.store.lock(r.collection.Name)
	l.Lock()
	defer l.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	p := PT(record)
	for i := range records {
		if PT(&records[i]).GetID() != p.GetID() {
			continue
		}
		stamp(p)
		prePersist(p)
		records[i] = *record
		return r.save(records)
	}
	return ErrNotFound
}

func (r *fileRepository[T, PT]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.store.lock(r.collection.Name)
	l.Lock()
	defer l.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if PT(&records[i]).GetID() == id {
			records = append(records[:i], records[i+1:]...)
			return r.save(records)
		}
	}
	return ErrNotFound
}

func (r *fileRepository[T, PT]) Find(ctx context.Context, filter Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := r.store.lock(r.collection.Name)
	l.RLock()
	defer l.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	want, err := normalizeWhere(filter.Where)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for i := range records {
		if filter.ActiveOnly && !PT(&records[i]).Active() {
			continue
		}
		if len(want) > 0 {
			ok, err := matchesWhere(&records[i], want)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, records[i])
	}
	return out, nil
}

// normalizeWhere round-trips filter values through JSON so they compare equal to decoded fields.
func normalizeWhere(where map[string]any) (map[string]any, error) {
	if len(where) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(where)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return out, nil
}

func matchesWhere(record any, want map[string]any) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, err
	}
	for key, value := range want {
		if !reflect.DeepEqual(fields[key], value) {
			return false, nil
		}
	}
	return true, nil
}
