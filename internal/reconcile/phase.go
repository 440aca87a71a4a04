// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"fmt"
)

const (
	// PhaseIdle indicates the reconciler was created but Run has not been called.
	PhaseIdle Phase = iota
	// PhaseParseTemplates resolves which unit classes carry content fingerprints.
	PhaseParseTemplates
	// PhaseLoadArtifacts reads the manifest script, its map and the JSON manifest.
	PhaseLoadArtifacts
	// PhaseReconcileUnits renames unit assets.
	PhaseReconcileUnits
	// PhaseReconcileManifest patches and renames the manifest artifacts.
	PhaseReconcileManifest
	// PhaseFlushManifestJSON writes the JSON manifest.
	PhaseFlushManifestJSON
	// PhaseDone is terminal: the run completed.
	PhaseDone
	// PhaseFailed is terminal: the run aborted with an error.
	PhaseFailed
)

// ErrInvalidPhase is returned for an out-of-order phase transition.
var ErrInvalidPhase = errors.New("invalid phase transition")

type (
	// Phase is a step of a reconciliation run.
	Phase int32

	// InvalidPhaseError is returned when a transition skips or repeats a phase.
	// It wraps ErrInvalidPhase for errors.Is() compatibility.
	InvalidPhaseError struct {
		From Phase
		To   Phase
	}
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseParseTemplates:
		return "parse-templates"
	case PhaseLoadArtifacts:
		return "load-artifacts"
	case PhaseReconcileUnits:
		return "reconcile-units"
	case PhaseReconcileManifest:
		return "reconcile-manifest"
	case PhaseFlushManifestJSON:
		return "flush-manifest-json"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for PhaseDone and PhaseFailed.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Error implements the error interface for InvalidPhaseError.
func (e *InvalidPhaseError) Error() string {
	return fmt.Sprintf("invalid phase transition %s -> %s", e.From, e.To)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidPhaseError) Unwrap() error {
	return ErrInvalidPhase
}

// next validates a transition. Phases advance strictly one step at a time,
// and any non-terminal phase may fail.
func (p Phase) next(to Phase) error {
	if to == PhaseFailed && !p.IsTerminal() {
		return nil
	}
	if p.IsTerminal() || to != p+1 {
		return &InvalidPhaseError{From: p, To: to}
	}
	return nil
}
