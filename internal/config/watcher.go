// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// A Watcher reports when the config file changes on disk. It never reloads a
// live Config; the running configuration stays as it was constructed, and the
// callback only lets the UI suggest a restart.
type Watcher interface {
	// Watch starts watching for changes.
	Watch() error

	// Close stops watching and releases resources.
	Close() error
}

// NewWatcher returns a watcher for path that calls onChange after the file is
// modified, created, or replaced. fsnotify is tried first; when it is
// unavailable the watcher falls back to polling.
func NewWatcher(path string, onChange func()) Watcher {
	fw, err := newFsnotifyWatcher(path, 300*time.Millisecond, onChange)
	if err == nil {
		return fw
	}
	return newPollingWatcher(path, 2*time.Second, onChange)
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

type fsnotifyWatcher struct {
	path     string
	onChange func()
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func newFsnotifyWatcher(path string, debounce time.Duration, onChange func()) (*fsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &fsnotifyWatcher{
		path:     abs,
		onChange: onChange,
		watcher:  watcher,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. The parent directory is watched rather than the file
// itself so editors that save via rename-and-replace are still seen.
func (fw *fsnotifyWatcher) Watch() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.processPending()

	return nil
}

func (fw *fsnotifyWatcher) processEvents() {
	defer func() {
		// A panic in the watcher must not take the session down.
		_ = recover()
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.mu.Lock()
				fw.pending = time.Now()
				fw.mu.Unlock()
			}

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// processPending fires onChange once the debounce window has passed, so a
// burst of writes from one save collapses into a single notification.
func (fw *fsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			fw.mu.Lock()
			fire := !fw.pending.IsZero() && time.Since(fw.pending) >= fw.debounce
			if fire {
				fw.pending = time.Time{}
			}
			fw.mu.Unlock()

			if fire && fw.onChange != nil {
				fw.onChange()
			}
		}
	}
}

func (fw *fsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

type pollingWatcher struct {
	path     string
	onChange func()
	interval time.Duration
	modTime  time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func newPollingWatcher(path string, interval time.Duration, onChange func()) *pollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &pollingWatcher{
		path:     path,
		onChange: onChange,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (pw *pollingWatcher) Watch() error {
	if info, err := os.Stat(pw.path); err == nil {
		pw.modTime = info.ModTime()
	}

	go pw.poll()
	return nil
}

func (pw *pollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			info, err := os.Stat(pw.path)
			if err != nil {
				continue
			}
			if !info.ModTime().Equal(pw.modTime) {
				pw.modTime = info.ModTime()
				if pw.onChange != nil {
					pw.onChange()
				}
			}
		}
	}
}

func (pw *pollingWatcher) Close() error {
	pw.cancel()
	return nil
}
