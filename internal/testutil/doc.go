// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv),
// directory changes (MustChdir), and output-directory fixtures (WriteFiles,
// ReadFile, AssertFile, AssertNoFile).
package testutil
