// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/docit/core"
)

// Manager owns the live snapshot and its file on disk. Saves replace the file
// atomically, so a crash mid-rebuild leaves the previous snapshot intact and
// concurrent queries keep reading the old one until the swap completes.
type Manager struct {
	path   string
	model  string
	mu     sync.RWMutex
	snap   *Snapshot
	logger *slog.Logger
}

// NewManager creates a manager for the snapshot file at path. embeddingModel
// is the configured model identity; snapshots built with a different model
// are rejected at load.
func NewManager(path, embeddingModel string) *Manager {
	return &Manager{
		path:   path,
		model:  embeddingModel,
		logger: slog.Default().With("component", "index-manager"),
	}
}

// Path returns the snapshot file location.
func (m *Manager) Path() string {
	return m.path
}

// Save persists the snapshot and installs it as the live one. The bytes are
// written to a temp file in the same directory and renamed over the target,
// so the file on disk is always a complete snapshot.
func (m *Manager) Save(snap *Snapshot) error {
	data := MarshalSnapshot(snap)

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("swapping snapshot into place: %w", err)
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	m.logger.Info("index snapshot saved",
		"generation", snap.Generation,
		"records", len(snap.Records),
		"dimension", snap.Dimension)
	return nil
}

// Load reads the snapshot file, verifies the embedding model identity and
// installs the snapshot as the live one. An absent file means no ingestion
// has run yet and surfaces as core.ErrIndexNotFound.
func (m *Manager) Load() (*Snapshot, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, core.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", m.path, err)
	}

	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		return nil, err
	}

	if m.model != "" && snap.EmbeddingModel != m.model {
		return nil, fmt.Errorf("%w: index built with embedding model %q, configured model is %q",
			core.ErrConfigMismatch, snap.EmbeddingModel, m.model)
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	m.logger.Debug("index snapshot loaded",
		"generation", snap.Generation, "records", len(snap.Records))
	return snap, nil
}

// Current returns the live snapshot, loading it from disk on first use.
func (m *Manager) Current() (*Snapshot, error) {
	m.mu.RLock()
	snap := m.snap
	m.mu.RUnlock()

	if snap != nil {
		return snap, nil
	}
	return m.Load()
}

// Search runs a similarity query against the live snapshot.
func (m *Manager) Search(query []float32, k int) ([]core.SearchResult, error) {
	snap, err := m.Current()
	if err != nil {
		return nil, err
	}
	return snap.Search(query, k)
}

// Generation reports the live snapshot's generation stamp.
func (m *Manager) Generation() (string, error) {
	snap, err := m.Current()
	if err != nil {
		return "", err
	}
	return snap.Generation, nil
}
