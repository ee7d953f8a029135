package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"synergism-calc/core/report"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// FileStore keeps one JSON file per record under <base>/<profile>/<id>.json
type FileStore struct {
	basePath string
	opts     options
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string, opts ...Option) (*FileStore, error) {
	if basePath == "" {
		return nil, errors.Config("file storage needs a directory", nil)
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Config("cannot create storage directory "+basePath, err)
	}
	return &FileStore{basePath: basePath, opts: newOptions(opts)}, nil
}

func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepare(rec, s.opts.clock); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, rec.Profile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Internal("cannot create profile directory", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Internal("cannot encode record", err)
	}

	// Write then rename so readers never see a partial record.
	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return errors.Internal("cannot create record file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Internal("cannot write record", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Internal("cannot write record", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, rec.ID+".json")); err != nil {
		os.Remove(tmp.Name())
		return errors.Internal("cannot store record", err)
	}

	logging.Debug("report stored",
		zap.String("id", rec.ID),
		zap.String("profile", rec.Profile))
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return readRecord(path)
}

// find returns the file holding id.
func (s *FileStore) find(ctx context.Context, id string) (string, error) {
	profiles, err := os.ReadDir(s.basePath)
	if err != nil {
		return "", errors.Internal("cannot read storage", err)
	}
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !p.IsDir() {
			continue
		}
		path := filepath.Join(s.basePath, p.Name(), id+".json")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.NotFound("report", id)
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Internal("cannot read record", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Parsing("corrupt record "+filepath.Base(path), err)
	}
	if rec.Report == nil {
		return nil, errors.Newf(errors.TypeParsing, "record %s has no report", filepath.Base(path))
	}
	return &rec, nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	profiles, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Internal("cannot read storage", err)
	}
	for _, p := range profiles {
		if !p.IsDir() || (filter != nil && filter.Profile != "" && p.Name() != filter.Profile) {
			continue
		}
		files, err := filepath.Glob(filepath.Join(s.basePath, p.Name(), "*.json"))
		if err != nil {
			return nil, errors.Internal("cannot list records", err)
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, err := readRecord(path)
			if err != nil {
				logging.Warn("skipping unreadable record", zap.String("path", path), zap.Error(err))
				continue
			}
			if filter.match(rec) {
				records = append(records, rec)
			}
		}
	}
	return filter.page(records), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.Internal("cannot delete record", err)
	}
	return nil
}

func (s *FileStore) Latest(ctx context.Context, profile string) (*Record, error) {
	return latest(ctx, s, profile)
}

func (s *FileStore) Compare(ctx context.Context, oldID, newID string) (*report.Comparison, error) {
	return compare(ctx, s, oldID, newID)
}

func (s *FileStore) Close() error {
	return nil
}
