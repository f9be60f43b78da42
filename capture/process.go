// Copyright (c) 2025, Grigory Buteyko aka Hrissan
// Licensed under the MIT License. See LICENSE for details.

package capture

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hrissan/dtlscerts/options"
	"github.com/hrissan/dtlscerts/session"
)

type FileResult struct {
	Path     string
	Sessions []*session.Session
	Err      error // this file only, other files are still processed
}

// ProcessFiles runs one Engine per file, at most opts.Workers at once.
// Results are in the order of paths. Only cancellation of ctx is returned
// as an error, per-file errors are in FileResult.
func ProcessFiles(ctx context.Context, paths []string, opts *options.Options) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return err
			}
			sessions, err := ProcessFile(gctx, path, opts)
			results[i] = FileResult{Path: path, Sessions: sessions, Err: err}
			return gctx.Err()
		})
	}
	err := g.Wait()
	return results, err
}
