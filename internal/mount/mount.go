// Package mount detects whether two paths reside on the same storage
// volume, driving the indexer's "same-filesystem preferred" rule so the
// pipeline can rename instead of copy downstream.
package mount

// SameFilesystemFunc reports whether path and outputDir live on the same
// storage volume. Implementations are platform-specific; see Same.
type SameFilesystemFunc func(path, outputDir string) (bool, error)
