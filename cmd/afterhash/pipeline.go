// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/afterhash/afterhash/internal/issue"
	"github.com/afterhash/afterhash/internal/outfs"
	"github.com/afterhash/afterhash/internal/reconcile"
	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/fingerprint"
)

// defaultStatsPath is the build description read when --stats is not given.
const defaultStatsPath = "afterhash-stats.json"

type (
	// pipelineRequest selects the build description and per-run overrides.
	pipelineRequest struct {
		StatsPath  string
		OutputPath string
		// Hash overrides the configured hash function when set.
		Hash   string
		DryRun bool
	}

	// pipelineOutcome is what one reconciliation produced.
	pipelineOutcome struct {
		OutputPath string
		Result     *reconcile.Result
		Ops        []outfs.Op
	}
)

// reconcileBuild loads the build description, seeds the asset table from
// the output directory and runs one reconciliation through the host
// completion adapter.
func (s *session) reconcileBuild(ctx context.Context, req pipelineRequest) (*pipelineOutcome, error) {
	comp, err := s.loadCompilation(req)
	if err != nil {
		return nil, err
	}

	algorithm := fingerprint.Algorithm(s.cfg.HashFunction)
	if req.Hash != "" {
		algorithm = fingerprint.Algorithm(req.Hash)
	}
	fp, err := fingerprint.New(algorithm)
	if err != nil {
		return nil, newServiceError(err, issue.UnknownAlgorithmId)
	}

	strategy := reconcile.PatchStrategy(s.cfg.PatchStrategy)
	patch, err := strategy.Func()
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId)
	}
	fingerprintPatch, err := strategy.FingerprintFunc()
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId)
	}

	base := outfs.NewDir(comp.OutputPath)
	recorder := outfs.NewRecorder(base)
	if req.DryRun {
		recorder = outfs.NewDryRun(base)
	}

	r, err := reconcile.New(comp, recorder,
		reconcile.WithLogger(s.logger),
		reconcile.WithFingerprinter(fp),
		reconcile.WithPatch(patch),
		reconcile.WithFingerprintPatch(fingerprintPatch),
		reconcile.WithManifestJSONName(s.cfg.ManifestJSONName),
		reconcile.WithManifestChunkName(s.cfg.ManifestChunkName),
		reconcile.WithScriptExtensions(s.cfg.ScriptExtensions...),
	)
	if err != nil {
		return nil, err
	}

	var (
		res    *reconcile.Result
		runErr error
	)
	reconcile.AfterEmit(ctx, r, func(result *reconcile.Result, err error) {
		res, runErr = result, err
	})
	if runErr != nil {
		return nil, newServiceError(
			fmt.Errorf("reconcile %s: %w", comp.OutputPath, runErr),
			classifyError(runErr),
		)
	}

	return &pipelineOutcome{
		OutputPath: comp.OutputPath,
		Result:     res,
		Ops:        recorder.Ops(),
	}, nil
}

// loadCompilation reads the build description and returns a Compilation
// whose asset table holds every declared file present on disk plus the JSON
// manifest.
func (s *session) loadCompilation(req pipelineRequest) (*build.Compilation, error) {
	statsPath := req.StatsPath
	if statsPath == "" {
		statsPath = defaultStatsPath
	}

	desc, err := build.LoadDescription(statsPath)
	if err != nil {
		if isNotExist(err) {
			return nil, newServiceError(issue.NewErrorContext().
				WithOperation("load build description").
				WithResource(statsPath).
				WithSuggestions(
					"Write the stats file from your bundler after emit",
					"Pass its location with --stats",
				).
				Wrap(err).
				BuildError(), issue.DescriptionNotFoundId)
		}
		return nil, newServiceError(issue.WrapWithContext(err, "parse build description", statsPath), issue.DescriptionParseErrorId)
	}

	comp, err := desc.Compilation(build.CompileOptions{
		BaseDir:          filepath.Dir(statsPath),
		OutputPath:       req.OutputPath,
		EntryTemplate:    s.cfg.Templates.Entry,
		NonEntryTemplate: s.cfg.Templates.NonEntry,
	})
	if err != nil {
		return nil, newServiceError(issue.NewErrorContext().
			WithOperation("read build description").
			WithResource(statsPath).
			WithSuggestions(
				"Set output.filename and output.chunkFilename in the description, or templates in the config",
				"Set outputPath in the description, or pass --output",
			).
			Wrap(err).
			BuildError(), issue.DescriptionParseErrorId)
	}

	info, err := os.Stat(comp.OutputPath)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", comp.OutputPath)
	}
	if err != nil {
		return nil, newServiceError(issue.WrapWithContext(err, "open output directory", comp.OutputPath), issue.OutputDirNotFoundId)
	}

	if err := build.SeedAssets(comp.Assets, os.DirFS(comp.OutputPath), comp.Units, s.cfg.ManifestJSONName); err != nil {
		return nil, newServiceError(issue.WrapWithContext(err, "read emitted assets", comp.OutputPath), issue.OutputDirNotFoundId)
	}

	s.logger.Debug("loaded build description",
		"stats", statsPath,
		"output", comp.OutputPath,
		"units", len(comp.Units),
	)
	return comp, nil
}
