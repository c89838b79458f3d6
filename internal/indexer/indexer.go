// Package indexer builds the hash→files multimap the matcher consumes,
// applying the deterministic five-rule preference ordering from spec.md
// §4.1. Fan-out across files uses a bounded worker pool, mirroring the
// errgroup+semaphore pattern meigma-blob's batch Processor uses for
// parallel entry processing.
package indexer

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"romnibus/internal/fingerprint"
	"romnibus/internal/mount"
)

// Options configures indexing. Workers follows the batch-processor
// convention: 0 = auto (runtime.NumCPU()), <0 = serial, >0 = fixed count.
type Options struct {
	Workers      int
	OutputDir    string
	SameFSLookup mount.SameFilesystemFunc // nil disables rule 4 (always "not same")
}

// Index maps a fingerprint to its candidate Files, ordered by preference
// (most-preferred first).
type Index map[fingerprint.Hash][]*fingerprint.File

// Build computes fingerprints for every file (in parallel, bounded by
// Options.Workers) and assembles the preference-ordered index. The
// fingerprint-to-files map is mutated only during build-up by goroutines
// writing to disjoint per-file results, then frozen (sorted) once all
// writers have finished — a single build-then-freeze pass, never mutated
// concurrently with reads.
func Build(ctx context.Context, files []*fingerprint.File, opts Options) (Index, error) {
	if len(files) == 0 {
		return Index{}, nil
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for _, f := range files {
		f := f
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			_, err := f.WithHeaderHash()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := make(Index)
	for _, f := range files {
		withHeader, err := f.WithHeaderHash()
		if err != nil {
			continue // malformed reads are surfaced by the caller before reaching here
		}
		idx[withHeader] = append(idx[withHeader], f)

		if without, ok, err := f.WithoutHeaderHash(); err == nil && ok {
			idx[without] = append(idx[without], f)
		}
	}

	for k := range idx {
		sortByPreference(idx[k], k, opts)
	}

	return idx, nil
}

// sortByPreference orders files under one fingerprint key by the five
// rules in spec.md §4.1, lower value wins at each step, lexicographic path
// as the final deterministic tiebreaker.
func sortByPreference(files []*fingerprint.File, key fingerprint.Hash, opts Options) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]

		if av, bv := headerMatchRank(a, key), headerMatchRank(b, key); av != bv {
			return av < bv
		}
		if av, bv := a.ArchiveKind().Priority(), b.ArchiveKind().Priority(); av != bv {
			return av < bv
		}
		if av, bv := inOutputDirRank(a, opts.OutputDir), inOutputDirRank(b, opts.OutputDir); av != bv {
			return av < bv
		}
		if av, bv := sameFilesystemRank(a, opts), sameFilesystemRank(b, opts); av != bv {
			return av < bv
		}
		return a.Path < b.Path
	})
}

// headerMatchRank: 1 if the file has a header and the fingerprint that
// placed it under this key is the without-header one, else 0. Prefers the
// raw/header-present form — the file whose natural bytes match the key.
func headerMatchRank(f *fingerprint.File, key fingerprint.Hash) int {
	if f.Header == nil {
		return 0
	}
	without, ok, err := f.WithoutHeaderHash()
	if err != nil || !ok {
		return 0
	}
	if without == key {
		return 1
	}
	return 0
}

func inOutputDirRank(f *fingerprint.File, outputDir string) int {
	if outputDir == "" {
		return 0
	}
	path := f.Path
	if f.InArchive() {
		path = f.Entry.Archive.Path
	}
	if strings.HasPrefix(path, strings.TrimRight(outputDir, "/")+"/") || path == outputDir {
		return 1
	}
	return 0
}

func sameFilesystemRank(f *fingerprint.File, opts Options) int {
	if opts.SameFSLookup == nil || opts.OutputDir == "" {
		return 1
	}
	path := f.Path
	if f.InArchive() {
		path = f.Entry.Archive.Path
	}
	same, err := opts.SameFSLookup(path, opts.OutputDir)
	if err != nil || !same {
		return 1
	}
	return 0
}
