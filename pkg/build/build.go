// SPDX-License-Identifier: MPL-2.0

// Package build models the completed compilation handed to the reconciler:
// the emitted units, the configured naming templates, and the host's asset
// table.
package build

import (
	"errors"
	"fmt"
	"strings"

	"github.com/afterhash/afterhash/pkg/template"
)

// ErrInvalidUnitID is the sentinel wrapped by InvalidUnitIDError.
var ErrInvalidUnitID = errors.New("invalid unit id")

type (
	// UnitID identifies a build unit. Bundlers emit numeric or string ids;
	// both are kept in their textual form.
	UnitID string

	// InvalidUnitIDError is returned when a UnitID is empty or contains whitespace.
	InvalidUnitIDError struct {
		Value UnitID
	}

	// BuildUnit is one emitted group of compiled output (a "chunk").
	BuildUnit struct {
		ID   UnitID
		Name string
		// PreEmitFingerprint is the full fingerprint the bundler used to name
		// the unit's files before emitting them.
		PreEmitFingerprint string
		// Files lists the unit's emitted filenames relative to the output path.
		Files   []string
		IsEntry bool
	}

	// NamingTemplates holds the two templates a bundler names units with.
	NamingTemplates struct {
		Entry    template.NamingTemplate
		NonEntry template.NamingTemplate
	}

	// Compilation is the completed build the reconciler operates on.
	Compilation struct {
		OutputPath string
		Templates  NamingTemplates
		Units      []BuildUnit
		Assets     AssetStore
	}
)

// String returns the textual id.
func (id UnitID) String() string { return string(id) }

// Validate returns an error wrapping ErrInvalidUnitID if id is unusable in a filename.
func (id UnitID) Validate() error {
	if id == "" || strings.ContainsAny(string(id), " \t\r\n") {
		return &InvalidUnitIDError{Value: id}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidUnitIDError) Error() string {
	return fmt.Sprintf("invalid unit id %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidUnitID for errors.Is() compatibility.
func (e *InvalidUnitIDError) Unwrap() error { return ErrInvalidUnitID }

// For returns the template governing u's files.
func (t NamingTemplates) For(u BuildUnit) template.NamingTemplate {
	if u.IsEntry {
		return t.Entry
	}
	return t.NonEntry
}

// FindUnit returns the first unit named name.
func (c *Compilation) FindUnit(name string) (BuildUnit, bool) {
	for _, u := range c.Units {
		if u.Name == name {
			return u, true
		}
	}
	return BuildUnit{}, false
}

// Validate checks the structural invariants the reconciler relies on.
func (c *Compilation) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OutputPath) == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	if err := c.Templates.Entry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("entry template: %w", err))
	}
	if err := c.Templates.NonEntry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("non-entry template: %w", err))
	}
	for i, u := range c.Units {
		if err := u.ID.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("units[%d]: %w", i, err))
		}
	}
	if c.Assets == nil {
		errs = append(errs, errors.New("asset table is nil"))
	}
	return errors.Join(errs...)
}
