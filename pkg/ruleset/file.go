package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// reloadDebounce coalesces the event bursts editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// FileSource loads rulesets from YAML files in a directory and serves them
// through an in-memory store. Watch keeps the store in sync with the
// directory so operators can edit rulesets without a restart.
type FileSource struct {
	dir    string
	store  *MemoryStore
	logger *slog.Logger
}

// fileDoc is the on-disk document shape: either a single ruleset or a
// document with a rulesets list.
type fileDoc struct {
	Ruleset  `yaml:",inline"`
	Rulesets []*Ruleset `yaml:"rulesets"`
}

// NewFileSource creates a source over dir backed by store.
func NewFileSource(dir string, store *MemoryStore) *FileSource {
	return &FileSource{
		dir:    dir,
		store:  store,
		logger: slog.Default().With("component", "ruleset-source", "dir", dir),
	}
}

// Store returns the backing store, for use as the engine's Resolver.
func (s *FileSource) Store() *MemoryStore { return s.store }

// Load reads every YAML file in the directory and atomically replaces the
// store's contents. A file that fails to parse fails the whole load; a
// partially applied directory is worse than a stale one.
func (s *FileSource) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read ruleset directory: %w", err)
	}

	var all []*Ruleset
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		rulesets, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		all = append(all, rulesets...)
	}

	s.store.ReplaceAll(all)
	s.logger.Info("rulesets loaded", "count", len(all))
	return nil
}

// Watch reloads the store whenever the directory changes. It blocks until
// ctx is cancelled. A failed reload keeps the previous rulesets and logs.
func (s *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	var debounce *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isYAML(event.Name) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			pending = debounce.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)
		case <-pending:
			pending = nil
			if err := s.Load(); err != nil {
				s.logger.Error("reload failed, keeping previous rulesets", "error", err)
			}
		}
	}
}

func loadFile(path string) ([]*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Rulesets) > 0 {
		return doc.Rulesets, nil
	}
	if doc.Ruleset.ID != uuid.Nil {
		rs := doc.Ruleset
		return []*Ruleset{&rs}, nil
	}
	return nil, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
