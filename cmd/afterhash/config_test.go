// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/afterhash/afterhash/internal/config"
	"github.com/afterhash/afterhash/internal/testutil"
)

func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "afterhash.cue")

	stdout, stderr, err := executeCommand(t, staticConfig{}, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("init error = %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("stdout = %q, want it to name %s", stdout, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if string(data) != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("written config differs from the defaults:\n%s", data)
	}

	_, stderr, err = executeCommand(t, staticConfig{}, "config", "init", "--config", path)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitUsage {
		t.Fatalf("second init error = %v, want usage ExitError", err)
	}
	for _, want := range []string{"--force", "afterhash config show"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr does not suggest %q:\n%s", want, stderr)
		}
	}

	if _, stderr, err := executeCommand(t, staticConfig{}, "config", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("forced init error = %v\n%s", err, stderr)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.HashFunction = config.HashBLAKE3

	stdout, _, err := executeCommand(t, staticConfig{cfg: cfg, path: "/etc/afterhash.cue"}, "config", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, s := range []string{"// source: /etc/afterhash.cue", `"blake3"`, "manifest_json_name"} {
		if !strings.Contains(stdout, s) {
			t.Errorf("stdout missing %q:\n%s", s, stdout)
		}
	}

	stdout, _, err = executeCommand(t, staticConfig{}, "config", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, "(defaults)") {
		t.Errorf("stdout does not report defaults:\n%s", stdout)
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeCommand(t, staticConfig{path: "/srv/app/afterhash.cue"}, "config", "path")
	if err != nil {
		t.Fatalf("path error = %v", err)
	}
	if !strings.Contains(stdout, "/srv/app/afterhash.cue") {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = executeCommand(t, staticConfig{}, "config", "path")
	if err != nil {
		t.Fatalf("path error = %v", err)
	}
	if !strings.Contains(stdout, "using defaults") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.cue")
	_, stderr, err := executeCommand(t, config.NewProvider(), "run", "--config", missing)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitUsage {
		t.Fatalf("error = %v, want usage ExitError", err)
	}
	if !strings.Contains(stderr, "config file not found") {
		t.Errorf("stderr:\n%s", stderr)
	}
}

func TestLocalConfigAndEnvOverride(t *testing.T) {
	// Not parallel: changes the working directory and the environment.
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		config.LocalConfigFileName: "hash_function: \"sha256\"\npatch_strategy: \"plain\"\n",
	})
	defer testutil.MustChdir(t, dir)()

	stdout, stderr, err := executeCommand(t, config.NewProvider(), "config", "path")
	if err != nil {
		t.Fatalf("path error = %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, config.LocalConfigFileName) {
		t.Errorf("config path = %q, want the local file", stdout)
	}

	stdout, _, err = executeCommand(t, config.NewProvider(), "config", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, `"sha256"`) || !strings.Contains(stdout, `"plain"`) {
		t.Errorf("show did not reflect the local file:\n%s", stdout)
	}

	defer testutil.MustSetenv(t, config.EnvPrefix+"_HASH_FUNCTION", "blake3")()
	stdout, _, err = executeCommand(t, config.NewProvider(), "config", "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, `"blake3"`) {
		t.Errorf("environment override not applied:\n%s", stdout)
	}
}
