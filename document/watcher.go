package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/roveo/topo-syntax/treesitter"
)

// Change is reported for every write to a watched file.
type Change struct {
	Edits  []Edit
	Result *treesitter.ParseResult
}

// Watcher keeps a document in sync with a file on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	doc       *Document
	tasks     *Scheduler
}

// NewWatcher watches path and feeds its changes into doc.
func NewWatcher(path string, doc *Document) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      abs,
		doc:       doc,
		tasks:     NewScheduler(),
	}, nil
}

// Run watches until ctx is done, calling onChange with the edits derived from
// each write and the highlights of the region they invalidated. Writes that
// arrive while a parse is running cancel it.
func (w *Watcher) Run(ctx context.Context, onChange func(Change)) error {
	defer w.fsWatcher.Close()
	defer w.tasks.Cancel()

	// Watch the directory so that editors replacing the file are seen.
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			log.Info().Str("file", w.path).Str("op", event.Op.String()).Msg("file changed")
			if err := w.reload(ctx, onChange); err != nil {
				log.Error().Err(err).Str("file", w.path).Msg("failed to reload")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) reload(ctx context.Context, onChange func(Change)) error {
	content, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	w.tasks.Cancel()
	edits, err := w.doc.Update(string(content))
	if err != nil {
		return err
	}
	if len(edits) == 0 {
		return nil
	}

	r := edits[0].Range
	for _, e := range edits[1:] {
		r = r.Remapped(e.Range, e.Delta).Union(e.Range)
	}

	task := Schedule(ctx, w.tasks, func(ctx context.Context) (*treesitter.ParseResult, error) {
		return w.doc.Highlight(ctx, r)
	})
	go func() {
		result, err := task.Wait()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("task", task.ID).Msg("highlight failed")
			}
			return
		}
		onChange(Change{Edits: edits, Result: result})
	}()
	return nil
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == w.path
}
