// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"
)

func TestFatalWatchErrorsWindows(t *testing.T) {
	t.Parallel()

	watchOutputDir := func(errno syscall.Errno) error {
		return &fs.PathError{Op: "ReadDirectoryChangesW", Path: `dist\static\js`, Err: errno}
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"too many open files", syscall.Errno(4), true},
		{"output directory handle invalidated", watchOutputDir(syscall.Errno(6)), true},
		{"out of memory", syscall.Errno(8), true},
		{"invalid handle reported from the event loop", fmt.Errorf("watch: fatal fsnotify error: %w", syscall.Errno(6)), true},
		{"output directory locked", watchOutputDir(syscall.Errno(5)), false},
		{"stats file not found", syscall.Errno(2), false},
		{"buffer overflow", errors.New("fsnotify: queue or buffer overflow"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isFatalFsnotifyError(tt.err); got != tt.want {
				t.Errorf("isFatalFsnotifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
