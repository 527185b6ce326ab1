package archive

import "errors"

// Error taxonomy for import/export/delete operations. Call sites wrap
// these with the underlying cause so callers can match with errors.Is
// while the UI still gets a useful message.
var (
	// ErrDirectoryNotFound is returned when no game directory is
	// configured or the target directory is missing.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrUnsupportedFormat is returned for archives whose extension is
	// not one of .zip, .7z, .tar, .tar.zst or .tar.zstd.
	ErrUnsupportedFormat = errors.New("unsupported archive format (expected .zip, .7z, .tar, .tar.zst or .tar.zstd)")

	// ErrDependencyMissing is reserved for an absent optional codec.
	// The zstd and 7z codecs are compiled into this binary, so no
	// current code path returns it; it is part of the contract so
	// callers matching the full taxonomy keep working.
	ErrDependencyMissing = errors.New("decompression support missing")

	// ErrExtractionFailed wraps any failure while reading an archive or
	// writing its contents.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrNoFilesSelected is returned when an export or delete is
	// requested with an empty selection.
	ErrNoFilesSelected = errors.New("no files selected")

	// ErrCompressionFailed wraps any failure while producing an export
	// archive.
	ErrCompressionFailed = errors.New("compression failed")

	// ErrDeleteFailed is returned when one or more files in a delete
	// batch could not be removed.
	ErrDeleteFailed = errors.New("delete failed")
)
