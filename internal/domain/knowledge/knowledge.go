// Package knowledge serves the named knowledge-base documents the assistant
// can cite (rules, constitution, server information, chamber rules).
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"vcbot/internal/core/apperror"
)

// knownDocs is the closed set of document names, validated like bill types.
var knownDocs = map[string]struct{}{
	"rules":              {},
	"constitution":       {},
	"server_information": {},
	"house_rules":        {},
	"senate_rules":       {},
}

// config is the YAML layout of the knowledge file mapping.
type config struct {
	Files map[string]string `yaml:"files"`
}

// Base resolves document names to their file contents.
type Base struct {
	files map[string]string
}

// LoadConfig reads the YAML mapping and validates every entry: names must
// belong to the closed set and targets must exist.
func LoadConfig(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge config: %w", err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse knowledge config: %w", err)
	}
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("knowledge config %s defines no files", path)
	}

	baseDir := filepath.Dir(path)
	files := make(map[string]string, len(cfg.Files))
	for name, target := range cfg.Files {
		if _, ok := knownDocs[name]; !ok {
			return nil, fmt.Errorf("unknown knowledge document %q in %s", name, path)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}
		if _, err := os.Stat(target); err != nil {
			return nil, fmt.Errorf("knowledge document %q: %w", name, err)
		}
		files[name] = target
	}
	return &Base{files: files}, nil
}

// Names returns the configured document names, sorted.
func (b *Base) Names() []string {
	out := make([]string, 0, len(b.files))
	for name := range b.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the content of a named document.
func (b *Base) Get(_ context.Context, name string) (string, error) {
	if _, ok := knownDocs[name]; !ok {
		return "", apperror.NewValidation("unknown knowledge document").
			WithDetail("name", name)
	}
	path, ok := b.files[name]
	if !ok {
		return "", apperror.NewNotFound("knowledge document", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperror.NewPersistence(fmt.Errorf("read %s: %w", path, err))
	}
	return string(data), nil
}
