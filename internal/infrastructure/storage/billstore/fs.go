// Package billstore provides the filesystem-backed bill catalog store.
// Bill texts, PDFs and metadata live in sibling directories; every write is
// staged in a temp file and committed with a rename.
package billstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"vcbot/internal/core/apperror"
	"vcbot/internal/domain/bills"
	"vcbot/pkg/logger"
)

// Store implements bills.Store on the local filesystem.
type Store struct {
	textDir   string
	pdfDir    string
	metaDir   string
	backupDir string

	log *logger.Logger
	mu  sync.Mutex
}

// New creates the store rooted at dir, creating the layout if needed.
func New(dir string, log *logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("bill store dir is required")
	}
	s := &Store{
		textDir:   filepath.Join(dir, "texts"),
		pdfDir:    filepath.Join(dir, "pdfs"),
		metaDir:   filepath.Join(dir, "metadata"),
		backupDir: filepath.Join(dir, "backups"),
		log:       log.WithComponent("billstore"),
	}
	for _, d := range []string{s.textDir, s.pdfDir, s.metaDir, s.backupDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return s, nil
}

// sanitizeID rejects identifiers that could escape the store layout.
func sanitizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.NewValidation("bill identifier is required")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", apperror.NewValidation("invalid bill identifier").WithDetail("identifier", id)
	}
	return id, nil
}

func fileBase(id string) string {
	// "hr-123" → "hr123", the historical flat-file naming.
	return strings.ReplaceAll(id, "-", "")
}

// Save implements bills.Store. An overwritten text is first backed up as a
// zstd-compressed snapshot so administrative edits stay recoverable.
func (s *Store) Save(ctx context.Context, bill *bills.Bill) error {
	if err := bill.Validate(ctx); err != nil {
		return err
	}
	id, err := sanitizeID(bill.Identifier)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := fileBase(id)
	textPath := filepath.Join(s.textDir, base+".txt")

	if prev, err := os.ReadFile(textPath); err == nil && string(prev) != bill.TextContent {
		if err := s.backupText(base, prev); err != nil {
			return apperror.NewPersistence(err)
		}
	}

	if err := writeAtomic(textPath, []byte(bill.TextContent)); err != nil {
		return apperror.NewPersistence(err)
	}

	meta, err := json.MarshalIndent(bill, "", "  ")
	if err != nil {
		return apperror.NewPersistence(fmt.Errorf("encode bill %s: %w", id, err))
	}
	if err := writeAtomic(filepath.Join(s.metaDir, base+".json"), meta); err != nil {
		return apperror.NewPersistence(err)
	}
	return nil
}

// backupText writes a compressed snapshot of the previous text content.
func (s *Store) backupText(base string, content []byte) error {
	name := fmt.Sprintf("%s_%d.txt.zst", base, time.Now().UnixNano())
	f, err := os.Create(filepath.Join(s.backupDir, name))
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := enc.Write(content); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush backup: %w", err)
	}
	return f.Close()
}

// ReadBackup decompresses a stored backup by file name.
func (s *Store) ReadBackup(name string) ([]byte, error) {
	clean, err := sanitizeID(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.backupDir, clean))
	if err != nil {
		return nil, apperror.NewNotFound("backup", name)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(nil, nil)
}

// FindByID implements bills.Store. Returns (nil, nil) when the bill does not
// exist; the service layer maps that to NOT_FOUND.
func (s *Store) FindByID(_ context.Context, identifier string) (*bills.Bill, error) {
	id, err := sanitizeID(identifier)
	if err != nil {
		return nil, err
	}
	base := fileBase(id)

	meta, err := os.ReadFile(filepath.Join(s.metaDir, base+".json"))
	if err == nil {
		var bill bills.Bill
		if err := json.Unmarshal(meta, &bill); err != nil {
			return nil, apperror.NewCorruptStore(base+".json", err)
		}
		return &bill, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, apperror.NewPersistence(err)
	}

	// Legacy layout: a bare text file without metadata.
	text, err := os.ReadFile(filepath.Join(s.textDir, base+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperror.NewPersistence(err)
	}

	bt, number, err := bills.ParseIdentifier(id)
	if err != nil {
		return nil, nil
	}
	s.log.Warnw("serving legacy bill without metadata", "identifier", id)
	return &bills.Bill{
		Identifier:      id,
		Title:           fmt.Sprintf("Legacy Bill %s", id),
		BillType:        bt,
		ReferenceNumber: number,
		TextContent:     string(text),
	}, nil
}

// FindAll implements bills.Store.
func (s *Store) FindAll(ctx context.Context) ([]*bills.Bill, error) {
	entries, err := os.ReadDir(s.metaDir)
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	var out []*bills.Bill
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		meta, err := os.ReadFile(filepath.Join(s.metaDir, entry.Name()))
		if err != nil {
			return nil, apperror.NewPersistence(err)
		}
		var bill bills.Bill
		if err := json.Unmarshal(meta, &bill); err != nil {
			return nil, apperror.NewCorruptStore(entry.Name(), err)
		}
		out = append(out, &bill)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

// SavePDF implements bills.Store.
func (s *Store) SavePDF(_ context.Context, identifier string, content []byte) (string, error) {
	id, err := sanitizeID(identifier)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.pdfDir, fileBase(id)+".pdf")
	if err := writeAtomic(path, content); err != nil {
		return "", apperror.NewPersistence(err)
	}
	return path, nil
}

// writeAtomic stages data next to path and commits it with a rename.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
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
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

var _ bills.Store = (*Store)(nil)
