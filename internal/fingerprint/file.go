// Package fingerprint computes and memoises content hashes for candidate
// ROM files, with and without a known ROM-format header prefix.
package fingerprint

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"sync"

	"romnibus/internal/archive"
)

// Hash is an opaque content fingerprint, comparable by equality.
type Hash string

// Header describes a detected ROM-specific file header: a fixed-size
// prefix that must be skipped to recover the "natural" ROM bytes.
type Header struct {
	Name string // e.g. "iNES", "Lynx", "FDS"
	Size int64
}

// File is a located byte sequence: either a plain file on disk or an entry
// inside an archive. Fingerprints are computed lazily and memoised.
type File struct {
	Path      string // on-disk path, or archive path if InArchive
	EntryPath string // entry path within the archive, empty if not archived
	Size      int64
	Header    *Header
	Entry     *archive.Entry // non-nil when this File lives inside an archive

	once        sync.Once
	onceErr     error
	withHeader  Hash
	withoutHdr  Hash
	hasWithoutH bool
}

// InArchive reports whether this File must be read through an archive
// adapter rather than opened directly.
func (f *File) InArchive() bool {
	return f.Entry != nil
}

// ArchiveKind returns the archive kind backing this file, or archive.KindNone
// if it is a plain file.
func (f *File) ArchiveKind() archive.Kind {
	if f.Entry == nil {
		return archive.KindNone
	}
	return f.Entry.Archive.Kind
}

// WithHeaderHash returns the fingerprint of the file's raw bytes,
// computing and memoising it on first call.
func (f *File) WithHeaderHash() (Hash, error) {
	if err := f.ensure(); err != nil {
		return "", err
	}
	return f.withHeader, nil
}

// WithoutHeaderHash returns the fingerprint computed after skipping the
// detected header prefix. It returns ok=false if the file carries no
// header (the without-header fingerprint is then identical to the
// with-header one and callers should not index it separately).
func (f *File) WithoutHeaderHash() (hash Hash, ok bool, err error) {
	if err := f.ensure(); err != nil {
		return "", false, err
	}
	return f.withoutHdr, f.hasWithoutH, nil
}

// Seed pre-populates the with-header fingerprint from a trusted external
// source (the known-hash accelerator), short-circuiting the read+SHA-1 that
// compute would otherwise perform. Seed is a no-op if the fingerprint has
// already been computed or seeded — only the first caller wins.
func (f *File) Seed(hash Hash) {
	f.once.Do(func() {
		f.withHeader = hash
	})
}

// ensure computes both fingerprints exactly once, regardless of how many
// goroutines call into this File concurrently.
func (f *File) ensure() error {
	f.once.Do(func() {
		f.onceErr = f.compute()
	})
	return f.onceErr
}

func (f *File) compute() error {
	r, closer, err := f.open()
	if err != nil {
		return fmt.Errorf("fingerprint: opening %s: %w", f.displayPath(), err)
	}
	defer closer()

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("fingerprint: reading %s: %w", f.displayPath(), err)
	}

	f.withHeader = hashBytes(raw)

	if f.Header != nil && int64(len(raw)) > f.Header.Size {
		f.withoutHdr = hashBytes(raw[f.Header.Size:])
		f.hasWithoutH = true
	}

	return nil
}

func (f *File) open() (io.Reader, func(), error) {
	if f.Entry != nil {
		data, err := f.Entry.Archive.Adapter.ExtractBytes(f.Entry.Archive.Path, f.Entry.EntryPath)
		if err != nil {
			return nil, func() {}, err
		}
		return bytes.NewReader(data), func() {}, nil
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, func() {}, err
	}
	return file, func() { file.Close() }, nil
}

func (f *File) displayPath() string {
	if f.Entry != nil {
		return f.Entry.Archive.Path + "#" + f.Entry.EntryPath
	}
	return f.Path
}

func hashBytes(b []byte) Hash {
	h := sha1.Sum(b)
	return Hash(fmt.Sprintf("%x", h))
}
