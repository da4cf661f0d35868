// Package refstore provides durable Store implementations for the
// reference allocator: a JSON flat file (primary) and PostgreSQL.
package refstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/billtype"
	"vcbot/internal/domain/reference"
	"vcbot/pkg/logger"
)

// FileStore persists the full bill-type → reference mapping as one JSON file.
//
// Writes are atomic with respect to process crash: the new content is
// serialized to a temp file in the same directory, fsynced, then renamed over
// the live file. A crash before the rename leaves the previous valid file; a
// crash after leaves the new one. Partial content is never observable.
type FileStore struct {
	path string
	log  *logger.Logger

	// mu serializes writers at the file level. The allocator already routes
	// all saves through its own lock; this guards against auxiliary tooling
	// sharing the store instance.
	mu sync.Mutex
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("reference store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path, log: log.WithComponent("refstore")}, nil
}

// fileRecord is the on-disk per-type entry.
type fileRecord struct {
	Number    int64  `json:"reference_number"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Load implements reference.Store. A missing file is a first run and yields
// an empty mapping; a present but invalid file is fatal (CORRUPT_STORE) so
// numbers already handed out can never be reissued from a zeroed store.
func (s *FileStore) Load(_ context.Context) (map[billtype.BillType]reference.Reference, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[billtype.BillType]reference.Reference{}, nil
		}
		return nil, apperror.NewPersistence(fmt.Errorf("read %s: %w", s.path, err))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperror.NewCorruptStore(s.path, err)
	}

	refs := make(map[billtype.BillType]reference.Reference, len(raw))
	for key, value := range raw {
		bt, err := billtype.Parse(key)
		if err != nil {
			// Forward compatibility: entries written by a newer enumeration
			// are not an error, they are just not ours to touch.
			s.log.Warnw("skipping unknown bill type in reference store", "bill_type", key)
			continue
		}

		rec, err := decodeRecord(bt, value)
		if err != nil {
			return nil, apperror.NewCorruptStore(s.path, err)
		}
		refs[bt] = rec
	}
	return refs, nil
}

// decodeRecord reads either the current object form or the legacy bare
// integer form (older deployments stored just the counter).
func decodeRecord(bt billtype.BillType, value json.RawMessage) (reference.Reference, error) {
	var legacy int64
	if err := json.Unmarshal(value, &legacy); err == nil {
		if legacy < 0 {
			return reference.Reference{}, fmt.Errorf("bill type %s: negative reference number %d", bt, legacy)
		}
		now := time.Now()
		return reference.Reference{BillType: bt, Number: legacy, CreatedAt: now, UpdatedAt: now}, nil
	}

	var rec fileRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return reference.Reference{}, fmt.Errorf("bill type %s: %w", bt, err)
	}
	if rec.Number < 0 {
		return reference.Reference{}, fmt.Errorf("bill type %s: negative reference number %d", bt, rec.Number)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec.CreatedAt)
	if err != nil {
		return reference.Reference{}, fmt.Errorf("bill type %s: created_at: %w", bt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, rec.UpdatedAt)
	if err != nil {
		return reference.Reference{}, fmt.Errorf("bill type %s: updated_at: %w", bt, err)
	}

	return reference.Reference{
		BillType:  bt,
		Number:    rec.Number,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Save implements reference.Store.
func (s *FileStore) Save(_ context.Context, refs map[billtype.BillType]reference.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]fileRecord, len(refs))
	for bt, rec := range refs {
		if !bt.Valid() {
			return apperror.NewInvalidBillType(bt.String())
		}
		out[bt.String()] = fileRecord{
			Number:    rec.Number,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
			UpdatedAt: rec.UpdatedAt.Format(time.RFC3339Nano),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("encode references: %w", err))
	}

	if err := s.writeAtomic(data); err != nil {
		return apperror.NewPersistence(err)
	}
	return nil
}

// writeAtomic stages data in a temp file next to the live one and commits it
// with a single rename. The temp file is removed on any failure.
func (s *FileStore) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".refs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ reference.Store = (*FileStore)(nil)
