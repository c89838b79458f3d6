// Package fixdat implements the Fixdat Generator: diffing the original
// catalog against a set of successfully written candidates and producing a
// synthetic sub-catalog of what remains missing, per spec.md §4.3.
package fixdat

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"romnibus/internal/datmodel"
	"romnibus/models"
)

// ROMBinding is a single ROM that was successfully written to disk, as
// part of some candidate release.
type ROMBinding struct {
	Fingerprint string
}

// ReleaseCandidate is one written candidate for a parent class, carrying
// its ROM-to-file bindings.
type ReleaseCandidate struct {
	Parent   string
	Bindings []ROMBinding
}

// Provenance records the information written into the fixdat header's
// comment field.
type Provenance struct {
	ToolName    string
	ToolVersion string
	OriginalDAT string
	InputPaths  []string
	OutputPath  string
}

// Result is returned by Generate when a fixdat was produced.
type Result struct {
	Path string
	DAT  datmodel.DAT
}

// Clock abstracts the current time so tests can supply a fixed instant;
// Generate defaults to time.Now when nil.
type Clock func() time.Time

// Generate builds and writes the residual DAT, or returns ok=false if
// every ROM hash in original is already covered by candidates ("no
// fixdat"). The output directory is created if missing.
func Generate(original datmodel.DAT, candidates map[string][]ReleaseCandidate, outputDir string, prov Provenance, clock Clock) (Result, bool, error) {
	if clock == nil {
		clock = time.Now
	}

	writtenHashes := collectWrittenHashes(candidates)

	missing := missingGames(original, writtenHashes)
	if len(missing) == 0 {
		return Result{}, false, nil
	}

	header := original.Header
	header.Name += " fixdat"
	header.Description += " fixdat"
	timestamp := clock().UTC().Format("20060102-150405") + "Z"
	header.Version = timestamp
	header.Date = timestamp
	header.Comment = formatProvenance(prov)

	fixdatDAT := datmodel.DAT{Header: header, Games: missing}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, false, fmt.Errorf("fixdat: creating output dir %s: %w", outputDir, err)
	}

	filename := filenameFor(original)
	outPath := filepath.Join(outputDir, filename)

	doc := models.FromDAT(fixdatDAT)
	data, err := doc.MarshalXML()
	if err != nil {
		return Result{}, false, fmt.Errorf("fixdat: serializing %s: %w", outPath, err)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return Result{}, false, fmt.Errorf("fixdat: writing %s: %w", outPath, err)
	}

	return Result{Path: outPath, DAT: fixdatDAT}, true, nil
}

func collectWrittenHashes(candidates map[string][]ReleaseCandidate) map[string]bool {
	hashes := make(map[string]bool)
	for _, list := range candidates {
		for _, c := range list {
			for _, b := range c.Bindings {
				hashes[b.Fingerprint] = true
			}
		}
	}
	return hashes
}

// missingGames returns every game with at least one ROM whose fingerprint
// is absent from writtenHashes.
func missingGames(d datmodel.DAT, writtenHashes map[string]bool) []datmodel.Game {
	var missing []datmodel.Game
	for _, g := range d.Games {
		if !allWritten(g, writtenHashes) {
			missing = append(missing, g)
		}
	}
	return missing
}

func allWritten(g datmodel.Game, writtenHashes map[string]bool) bool {
	for _, r := range g.ROMs {
		if !writtenHashes[r.Fingerprint] {
			return false
		}
	}
	return true
}

func filenameFor(d datmodel.DAT) string {
	name := d.Header.Name
	if name == "" {
		name = "romnibus"
	}
	return name + ".dat"
}

func formatProvenance(p Provenance) string {
	s := fmt.Sprintf("generated by %s %s\noriginal dat: %s\noutput: %s",
		p.ToolName, p.ToolVersion, p.OriginalDAT, p.OutputPath)
	for _, in := range p.InputPaths {
		s += "\ninput: " + in
	}
	return s
}
