package agent

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/evoframe/rulekit/persist"
	"github.com/evoframe/rulekit/rules"
)

// Store holds the daemon's current default rule set. Sessions bound without
// an inline set evaluate whatever the store holds at bind time; the
// reloader swaps its contents when the backing file changes.
type Store struct {
	mu  sync.RWMutex
	set *rules.RuleSet
}

// NewStore creates a store, optionally seeded.
func NewStore(set *rules.RuleSet) *Store {
	return &Store{set: set}
}

// Get returns a private copy of the current set, or nil when empty.
func (s *Store) Get() *rules.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil
	}
	return s.set.Clone()
}

// Set replaces the current set.
func (s *Store) Set(set *rules.RuleSet) {
	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
}

// Reloader watches a rule-set file and swaps the store's contents whenever
// a valid new version lands. A file that fails to load keeps the previous
// set active, so a half-written or broken policy never reaches evaluation.
type Reloader struct {
	path  string
	store *Store
}

func NewReloader(path string, store *Store) *Reloader {
	return &Reloader{path: path, store: store}
}

// Start blocks until ctx is cancelled, reloading on every write or create
// event for the watched file. Editors and the evolutionary loop both tend
// to replace files via rename, so the watch is on the directory.
func (r *Reloader) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	slog.Info("rule-set reloader started", "path", r.path)

	for {
		select {
		case <-ctx.Done():
			slog.Info("rule-set reloader stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("rule-set watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() {
	set, err := persist.Load(r.path)
	if err != nil {
		slog.Error("rule-set reload failed, keeping previous set", "path", r.path, "error", err)
		return
	}
	r.store.Set(set)
	slog.Info("rule set reloaded", "path", r.path, "uid", set.UID, "rules", len(set.Rules))
}
