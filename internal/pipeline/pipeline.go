// Package pipeline wires Options -> DAT Source -> Merger -> Indexer ->
// Matcher -> Fixdat Generator into the end-to-end flow described in
// spec.md §2.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"romnibus/internal/archive"
	"romnibus/internal/config"
	"romnibus/internal/datmodel"
	"romnibus/internal/fingerprint"
	"romnibus/internal/fixdat"
	"romnibus/internal/indexer"
	"romnibus/internal/knownhash"
	"romnibus/internal/matcher"
	"romnibus/internal/merge"
	"romnibus/internal/mount"
	"romnibus/internal/progress"
	"romnibus/models"
)

// Result summarizes a completed run.
type Result struct {
	GamesTotal   int
	GamesMissing int
	FixdatPath   string
	FixdatWrote  bool
}

// Run executes the full reconciliation pipeline for opts.
func Run(ctx context.Context, opts config.Options, sink progress.Sink) (Result, error) {
	if sink == nil {
		sink = progress.Discard{}
	}

	sink.Reset()
	sink.SetSymbol("dat")
	sink.Log("loading catalog")

	original, err := loadDAT(opts.DATPath)
	if err != nil {
		return Result{}, err
	}

	sink.SetSymbol("merge")
	sink.Log(fmt.Sprintf("transforming to %s", opts.MergeModeName))
	transformed := merge.Transform(original, opts.MergeMode())

	counts := transformed.RoleCounts()
	sink.Log(fmt.Sprintf("%d parent, %d clone, %d standalone games",
		counts[datmodel.RoleParent], counts[datmodel.RoleClone], counts[datmodel.RoleStandalone]))

	sink.SetSymbol("index")
	registry := archive.NewDefaultRegistry(opts.UnrarBinary, opts.SevenZipBin)
	files, err := discoverFiles(opts.InputDirs, registry, sink)
	if err != nil {
		return Result{}, err
	}
	sink.Log(fmt.Sprintf("indexing %d candidate files", len(files)))

	if opts.KnownHashDB != "" {
		accel, err := knownhash.Open(opts.KnownHashDB)
		if err != nil {
			return Result{}, err
		}
		defer accel.Close()
		seedKnownHashes(files, accel)
	}

	idx, err := indexer.Build(ctx, files, indexer.Options{
		Workers:      opts.Workers,
		OutputDir:    opts.OutputDir,
		SameFSLookup: mount.Same,
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: indexing: %w", err)
	}

	sink.SetSymbol("match")
	candidates := matcher.Match(transformed, idx)

	result := Result{GamesTotal: len(transformed.Games)}
	for _, g := range transformed.Games {
		if !gameFullySatisfied(g, idx) {
			result.GamesMissing++
		}
	}

	if !opts.Fixdat {
		return result, nil
	}

	sink.SetSymbol("fixdat")
	sink.Log("generating fixdat")

	prov := fixdat.Provenance{
		ToolName:    "romnibus",
		ToolVersion: "dev",
		OriginalDAT: opts.DATPath,
		InputPaths:  opts.InputDirs,
		OutputPath:  opts.OutputDir,
	}

	fxResult, wrote, err := fixdat.Generate(original, candidates, opts.OutputDir, prov, time.Now)
	if err != nil {
		return result, err
	}
	result.FixdatWrote = wrote
	if wrote {
		result.FixdatPath = fxResult.Path
	}

	return result, nil
}

// seedKnownHashes consults the known-hash accelerator by filename and
// pre-seeds any hit onto its fingerprint.File, so the indexer's later
// WithHeaderHash call trusts the recorded hash instead of reading the file.
// Entries without a filename match fall through to normal hashing.
func seedKnownHashes(files []*fingerprint.File, accel *knownhash.Store) {
	for _, f := range files {
		name := f.EntryPath
		if name == "" {
			name = filepath.Base(f.Path)
		} else {
			name = filepath.Base(name)
		}

		game, err := accel.FindByFilename(name)
		if err != nil || game == nil {
			continue
		}
		f.Seed(fingerprint.Hash(game.Hash))
	}
}

func gameFullySatisfied(g datmodel.Game, idx indexer.Index) bool {
	for _, r := range g.ROMs {
		if _, ok := idx[fingerprint.Hash(r.Fingerprint)]; !ok {
			return false
		}
	}
	return true
}

func loadDAT(path string) (datmodel.DAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return datmodel.DAT{}, fmt.Errorf("pipeline: reading dat %s: %w", path, err)
	}
	d, err := models.ParseDAT(data)
	if err != nil {
		return datmodel.DAT{}, fmt.Errorf("pipeline: parsing dat %s: %w", path, err)
	}
	return d, nil
}

// discoverFiles walks each input directory, building a fingerprint.File
// per plain file and per archive entry. Malformed archives are logged and
// dropped from the indexer input per spec.md §7.
func discoverFiles(dirs []string, registry *archive.Registry, sink progress.Sink) ([]*fingerprint.File, error) {
	var files []*fingerprint.File

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			if adapter := registry.AdapterFor(path); adapter != nil {
				entries, err := adapter.ListEntries(path, 0)
				if err != nil {
					sink.Log(fmt.Sprintf("skipping malformed archive %s: %v", path, err))
					return nil // malformed archive: skip, per spec.md §7
				}
				arc := &archive.Archive{Path: path, Kind: adapter.Kind(), Adapter: adapter}
				for _, e := range entries {
					files = append(files, &fingerprint.File{
						Path:      path,
						EntryPath: e.EntryPath,
						Size:      e.Size,
						Header:    detectHeader(e.EntryPath, e.Size),
						Entry:     &archive.Entry{Archive: arc, EntryPath: e.EntryPath, Size: e.Size},
					})
				}
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			files = append(files, &fingerprint.File{
				Path:   path,
				Size:   info.Size(),
				Header: detectHeader(path, info.Size()),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline: discovering files in %s: %w", dir, err)
		}
	}

	return files, nil
}

// detectHeader recognizes the small set of well-known ROM-format header
// prefixes by their fixed size, keyed on file extension. Detection is
// deliberately conservative: an unrecognized extension carries no header.
func detectHeader(name string, size int64) *fingerprint.Header {
	switch ext := filepath.Ext(name); ext {
	case ".nes":
		if size > 16 {
			return &fingerprint.Header{Name: "iNES", Size: 16}
		}
	case ".fds":
		if size > 16 {
			return &fingerprint.Header{Name: "FDS", Size: 16}
		}
	case ".lnx":
		if size > 64 {
			return &fingerprint.Header{Name: "Lynx", Size: 64}
		}
	}
	return nil
}
