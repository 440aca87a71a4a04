// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"testing"
)

func TestPhaseNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    Phase
		to      Phase
		wantErr bool
	}{
		{PhaseIdle, PhaseParseTemplates, false},
		{PhaseParseTemplates, PhaseLoadArtifacts, false},
		{PhaseLoadArtifacts, PhaseReconcileUnits, false},
		{PhaseReconcileUnits, PhaseReconcileManifest, false},
		{PhaseReconcileManifest, PhaseFlushManifestJSON, false},
		{PhaseFlushManifestJSON, PhaseDone, false},
		{PhaseIdle, PhaseFailed, false},
		{PhaseReconcileUnits, PhaseFailed, false},
		{PhaseIdle, PhaseReconcileUnits, true},
		{PhaseReconcileManifest, PhaseReconcileUnits, true},
		{PhaseDone, PhaseFailed, true},
		{PhaseFailed, PhaseIdle, true},
		{PhaseDone, PhaseParseTemplates, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			t.Parallel()

			err := tt.from.next(tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("next() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPhase) {
				t.Errorf("next() error should wrap ErrInvalidPhase, got %v", err)
			}
		})
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	t.Parallel()

	for p := PhaseIdle; p <= PhaseFailed; p++ {
		want := p == PhaseDone || p == PhaseFailed
		if got := p.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", p, got, want)
		}
	}
}
