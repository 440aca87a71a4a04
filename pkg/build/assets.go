// SPDX-License-Identifier: MPL-2.0

package build

import (
	"maps"
	"slices"
)

type (
	// AssetStore is the host's table of emitted assets keyed by output name.
	// The reconciler moves entries when it renames a file so the host's
	// bookkeeping matches the output directory.
	AssetStore interface {
		Get(name string) ([]byte, bool)
		Set(name string, payload []byte)
		Remove(name string)
	}

	// MemoryAssetStore is a map-backed AssetStore. It is not safe for
	// concurrent use.
	MemoryAssetStore struct {
		assets map[string][]byte
	}
)

// NewMemoryAssetStore returns an empty store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{assets: make(map[string][]byte)}
}

// Get returns the payload stored under name.
func (s *MemoryAssetStore) Get(name string) ([]byte, bool) {
	p, ok := s.assets[name]
	return p, ok
}

// Set stores payload under name, replacing any previous entry.
func (s *MemoryAssetStore) Set(name string, payload []byte) {
	s.assets[name] = payload
}

// Remove deletes name from the store.
func (s *MemoryAssetStore) Remove(name string) {
	delete(s.assets, name)
}

// Names returns the stored names in sorted order.
func (s *MemoryAssetStore) Names() []string {
	return slices.Sorted(maps.Keys(s.assets))
}

// Len returns the number of stored assets.
func (s *MemoryAssetStore) Len() int {
	return len(s.assets)
}
