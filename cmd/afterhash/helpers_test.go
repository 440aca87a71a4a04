// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/afterhash/afterhash/internal/config"
	"github.com/afterhash/afterhash/internal/testutil"
	"github.com/afterhash/afterhash/pkg/fingerprint"
)

const testStats = `{
  // written by the bundler after emit
  "outputPath": "dist",
  "output": {"filename": "[name].[chunkhash:8].js", "chunkFilename": "[id].[chunkhash:8].js"},
  "chunks": [
    {"id": 0, "names": ["app"], "hash": "abcdef1234567890", "files": ["app.abcdef12.js"], "entry": true},
  ]
}`

const testAppPayload = "console.log('hello');\n"

// staticConfig is a ConfigProvider that never touches the filesystem.
type staticConfig struct {
	cfg  *config.Config
	err  error
	path string
}

func (p staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return p.cfg, nil
}

func (p staticConfig) Path(config.LoadOptions) (string, error) { return p.path, nil }

// executeCommand runs the root command with args and captures both streams.
func executeCommand(t *testing.T, provider ConfigProvider, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app, err := NewApp(Dependencies{Config: provider, Stdout: &out, Stderr: &errOut})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeBuild creates a stats file and its dist directory, returning the
// stats path and the dist directory.
func writeBuild(t *testing.T, extra map[string]string) (statsPath, dist string) {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"afterhash-stats.jsonc": testStats,
		"dist/app.abcdef12.js":  testAppPayload,
	}
	for name, content := range extra {
		files[name] = content
	}
	testutil.WriteFiles(t, dir, files)
	return filepath.Join(dir, "afterhash-stats.jsonc"), filepath.Join(dir, "dist")
}

// expectedAppName is the name the app script must end up with.
func expectedAppName(t *testing.T) string {
	t.Helper()

	svc, err := fingerprint.New(fingerprint.MD5)
	if err != nil {
		t.Fatalf("fingerprint.New() error = %v", err)
	}
	return "app." + fingerprint.Truncate(svc.ComputeString(testAppPayload), 8) + ".js"
}
