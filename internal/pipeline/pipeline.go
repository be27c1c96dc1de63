// Package pipeline converts many submissions in parallel. Each submission
// owns its tree; a failing submission never affects the others.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"pyast/internal/ast"
	"pyast/internal/cache"
	"pyast/internal/convert"
	"pyast/internal/logger"
)

// Job is one source file to convert.
type Job struct {
	Name   string
	Source string
}

// Result is the outcome of one Job. Exactly one of JSON and Err is set.
type Result struct {
	Name   string
	JSON   json.RawMessage
	Cached bool
	Err    error
}

// Options configures a Run.
type Options struct {
	Version string
	// Workers bounds the number of concurrent conversions; zero means
	// GOMAXPROCS.
	Workers int
	// Cache is optional.
	Cache cache.Store
}

// Run converts jobs and returns one Result per job, in job order. The
// returned error is non-nil only when the options are invalid or ctx is
// done; per-job failures are reported in the results.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	conv, err := convert.New(opts.Version)
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runJob(conv, job, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.LogBatchComplete(len(jobs), failed, time.Since(start))
	return results, nil
}

func runJob(conv *convert.Converter, job Job, opts Options) Result {
	version := conv.Version().String()
	var key string
	if opts.Cache != nil {
		key = cache.Key(version, job.Source)
		data, err := opts.Cache.Get(key)
		switch {
		case err == nil:
			logger.LogCacheHit(job.Name, key)
			return Result{Name: job.Name, JSON: data, Cached: true}
		case !errors.Is(err, cache.ErrNotFound):
			logger.Warn("Cache read failed", "file", job.Name, "error", err)
		}
	}

	data, err := Convert(conv, job)
	if err != nil {
		logger.LogError("convert", job.Name, err)
		return Result{Name: job.Name, Err: err}
	}
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, data); err != nil {
			logger.Warn("Cache write failed", "file", job.Name, "error", err)
		}
	}
	return Result{Name: job.Name, JSON: data}
}

// Convert converts a single job and returns its general AST as JSON.
func Convert(conv *convert.Converter, job Job) ([]byte, error) {
	start := time.Now()
	logger.LogPhase("convert", job.Name)
	program, err := conv.Source(job.Source, job.Name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(ast.GeneralAstToSlice(program))
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", job.Name, err)
	}
	logger.LogConversion(job.Name, conv.Version().String(), countNodes(program), time.Since(start))
	return data, nil
}

// countNodes returns the number of nodes in a converted program.
func countNodes(program ast.GeneralAst) int {
	count := 0
	for _, actor := range program {
		ast.Inspect(actor, func(ast.Node) bool {
			count++
			return true
		})
	}
	return count
}
