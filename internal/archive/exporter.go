package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/l4d2-addon-manager/internal/fsutil"
	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
)

// stagingDirName is the working directory created under the output
// directory while an export is assembled. It is removed when the export
// finishes, success or failure.
const stagingDirName = ".vpk_temp"

// stagingCopyLimit bounds concurrent file copies into the staging area.
const stagingCopyLimit = 4

// ExportResult describes a finished export.
type ExportResult struct {
	// ArchivePath is the produced .tar.zst file.
	ArchivePath string

	// Size is the archive size in bytes.
	Size int64

	// Elapsed is the wall-clock duration of the whole export.
	Elapsed time.Duration
}

// Exporter bundles selected addons into compressed archives.
type Exporter struct {
	outputDir string
}

// NewExporter returns an exporter writing archives under outputDir,
// typically the user's Downloads folder.
func NewExporter(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// Export stages the selected addons (and their thumbnails) into a working
// directory, then packs them into a single zstd-compressed, checksummed
// TAR named after the selection's titles.
//
// The call blocks until the archive is complete; the only concurrency is
// internal (bounded staging copies and the encoder's worker threads) and
// is joined before Export returns.
func (e *Exporter) Export(addons []model.Addon) (*ExportResult, error) {
	start := time.Now()

	if len(addons) == 0 {
		return nil, ErrNoFilesSelected
	}
	if err := fsutil.EnsureDir(e.outputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	stagingDir := filepath.Join(e.outputDir, stagingDirName)
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := fsutil.EnsureDir(stagingDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	defer os.RemoveAll(stagingDir)

	if err := e.stage(stagingDir, addons); err != nil {
		return nil, err
	}

	archivePath := filepath.Join(e.outputDir, model.ArchiveName(addons)+".tar.zst")
	if err := e.compress(stagingDir, archivePath); err != nil {
		os.Remove(archivePath)
		return nil, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	elapsed := time.Since(start)
	logging.Info("export complete",
		logging.String("archive", archivePath),
		logging.Int64("size", info.Size()),
		logging.Duration("elapsed", elapsed))

	return &ExportResult{
		ArchivePath: archivePath,
		Size:        info.Size(),
		Elapsed:     elapsed,
	}, nil
}

// stage copies each addon's file and thumbnail into the staging directory,
// flattened to base filenames. Copies run under a bounded errgroup and are
// all joined before stage returns.
func (e *Exporter) stage(stagingDir string, addons []model.Addon) error {
	var g errgroup.Group
	g.SetLimit(stagingCopyLimit)

	for _, addon := range addons {
		addon := addon
		g.Go(func() error {
			if _, err := os.Stat(addon.Path); err == nil {
				dst := filepath.Join(stagingDir, filepath.Base(addon.Path))
				if err := fsutil.CopyFile(addon.Path, dst); err != nil {
					return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
				}
			}
			if addon.ThumbnailPath != "" {
				if _, err := os.Stat(addon.ThumbnailPath); err == nil {
					dst := filepath.Join(stagingDir, filepath.Base(addon.ThumbnailPath))
					if err := fsutil.CopyFile(addon.ThumbnailPath, dst); err != nil {
						return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
					}
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// compress packs every file in stagingDir into a zstd-compressed tar at
// archivePath. Files are added in sorted name order for determinism.
func (e *Exporter) compress(stagingDir, archivePath string) error {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out,
		zstd.WithEncoderLevel(zstd.SpeedDefault), // zstd level 3
		zstd.WithEncoderCRC(true),
		zstd.WithEncoderConcurrency(compressionThreads()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	tw := tar.NewWriter(zw)
	for _, name := range names {
		if err := e.addFile(tw, stagingDir, name); err != nil {
			zw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	return out.Sync()
}

// addFile appends one staged file to the tar stream under its base name.
func (e *Exporter) addFile(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	return nil
}

// compressionThreads leaves one core free, minimum one worker.
func compressionThreads() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}
