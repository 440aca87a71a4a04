// SPDX-License-Identifier: MPL-2.0

package build

import "testing"

func TestMemoryAssetStore(t *testing.T) {
	t.Parallel()

	s := NewMemoryAssetStore()
	s.Set("b.js", []byte("b"))
	s.Set("a.js", []byte("a"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if names := s.Names(); names[0] != "a.js" || names[1] != "b.js" {
		t.Errorf("Names() = %v, want sorted", names)
	}

	s.Remove("a.js")
	if _, ok := s.Get("a.js"); ok {
		t.Error("a.js should be removed")
	}
	if p, ok := s.Get("b.js"); !ok || string(p) != "b" {
		t.Errorf("Get(b.js) = %q, %v", p, ok)
	}
}
