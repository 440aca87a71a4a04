// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"fmt"
)

// ErrRenameCollision is returned when a rename target is already taken.
var ErrRenameCollision = errors.New("rename target collision")

// RenameCollisionError reports a rename whose target name already belongs to
// another asset. No file is touched for the colliding rename.
type RenameCollisionError struct {
	From   string
	To     string
	Holder string
}

// Error implements the error interface.
func (e *RenameCollisionError) Error() string {
	return fmt.Sprintf("cannot rename %s to %s: target already held by %s", e.From, e.To, e.Holder)
}

// Unwrap returns ErrRenameCollision for errors.Is() compatibility.
func (e *RenameCollisionError) Unwrap() error { return ErrRenameCollision }
