// SPDX-License-Identifier: MPL-2.0

package manifestjson

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePreservesOrder(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"vendor.js": "vendor.00112233.js", "app.js": "app.abcdef12.js", "app.js.map": "app.abcdef12.js.map"}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := []string{"vendor.js", "app.js", "app.js.map"}
	if diff := cmp.Diff(want, doc.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, ok := doc.Get("app.js"); !ok || v != "app.abcdef12.js" {
		t.Errorf("Get(app.js) = %q, %v", v, ok)
	}
}

func TestParseDuplicateKey(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}
	if v, _ := doc.Get("a"); v != "3" {
		t.Errorf("a = %q, want last value 3", v)
	}
	if doc.Keys()[0] != "a" {
		t.Errorf("a should keep its first position, keys = %v", doc.Keys())
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"array", `["app.js"]`},
		{"number value", `{"app.js": 1}`},
		{"nested object", `{"app.js": {"src": "x"}}`},
		{"truncated", `{"app.js": "app.1.js"`},
		{"trailing data", `{"app.js": "app.1.js"} {}`},
		{"syntax error", `{"app.js" "app.1.js"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Parse(%q) error = %v, want ErrMalformed", tt.input, err)
			}
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Errorf("error should be *MalformedError, got %T", err)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	doc := New()
	doc.Set("app.js", "/static/app.11223344.js")
	doc.Set("runtime.js", "runtime.<x>&.js")

	got, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := "{\n  \"app.js\": \"/static/app.11223344.js\",\n  \"runtime.js\": \"runtime.<x>&.js\"\n}"
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}

	empty, err := New().Marshal()
	if err != nil || string(empty) != "{}" {
		t.Errorf("empty Marshal() = %q, %v", empty, err)
	}
}

func TestRoundTripKeepsKeySet(t *testing.T) {
	t.Parallel()

	input := "{\n  \"manifest.js\": \"manifest.aaaa.js\",\n  \"app.js\": \"app.bbbb.js\"\n}"
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	out, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != input {
		t.Errorf("round trip changed the document:\n%s", out)
	}
}

func TestRewrite(t *testing.T) {
	t.Parallel()

	doc := New()
	doc.Set("app.js", "app.abcdef12.js")
	doc.Set("app.js.map", "app.abcdef12.js.map")
	doc.Set("other.js", "other.abcdef12.js")

	replace := func(s string) string { return strings.ReplaceAll(s, "abcdef12", "11223344") }

	if !doc.Rewrite([]string{"app.js", "app.js.map", "missing.js"}, replace) {
		t.Fatal("Rewrite() reported no change")
	}
	if v, _ := doc.Get("app.js.map"); v != "app.11223344.js.map" {
		t.Errorf("app.js.map = %q", v)
	}
	if v, _ := doc.Get("other.js"); v != "other.abcdef12.js" {
		t.Errorf("unlisted key was rewritten: %q", v)
	}
	if doc.Rewrite([]string{"app.js"}, replace) {
		t.Error("second Rewrite() should report no change")
	}
}
