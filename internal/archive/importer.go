// Package archive imports third-party addon bundles and exports selected
// addons as compressed archives.
//
// Imports accept ZIP, 7-Zip, TAR and zstd-compressed TAR; exports always
// produce zstd-compressed TAR. Extraction overwrites files of the same
// name without prompting: the last import wins.
package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"

	"github.com/handiism/l4d2-addon-manager/internal/fsutil"
	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
)

// Importer extracts uploaded archives into the addons directory.
type Importer struct {
	addonsDir string
}

// NewImporter returns an importer targeting addonsDir. The directory is
// created on first import if missing.
func NewImporter(addonsDir string) *Importer {
	return &Importer{addonsDir: addonsDir}
}

// Import detects the archive format from the filename suffix and extracts
// its contents into the addons directory, overwriting existing files.
func (im *Importer) Import(path string) error {
	if im.addonsDir == "" {
		return ErrDirectoryNotFound
	}
	if err := fsutil.EnsureDir(im.addonsDir); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	lower := strings.ToLower(path)
	var err error
	switch {
	case strings.HasSuffix(lower, ".zip"):
		err = im.extractZip(path)
	case strings.HasSuffix(lower, ".7z"):
		err = im.extract7z(path)
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tar.zstd"):
		err = im.extractTarZst(path)
	case strings.HasSuffix(lower, ".tar"):
		err = im.extractTar(path)
	default:
		return ErrUnsupportedFormat
	}
	if err != nil {
		return err
	}

	im.normalizeThumbnails()
	logging.Info("archive imported",
		logging.String("archive", path),
		logging.String("dest", im.addonsDir))
	return nil
}

// extractZip extracts a ZIP archive.
func (im *Importer) extractZip(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		err = im.writeEntry(f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z extracts a 7-Zip archive.
func (im *Importer) extract7z(path string) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		err = im.writeEntry(f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractTar extracts a plain TAR archive.
func (im *Importer) extractTar(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer f.Close()

	return im.extractTarStream(f)
}

// extractTarZst extracts a zstd-compressed TAR in a single streaming pass:
// the decompressed stream feeds the tar reader directly, no intermediate
// tar file is materialized.
func (im *Importer) extractTarZst(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer zr.Close()

	return im.extractTarStream(zr)
}

// extractTarStream extracts every regular file from a tar stream.
func (im *Importer) extractTarStream(r io.Reader) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := im.writeEntry(hdr.Name, tr); err != nil {
			return err
		}
	}
}

// writeEntry writes one archive entry under the addons directory,
// preserving the entry's relative path and overwriting any existing file.
// Entries that would escape the addons directory are rejected.
func (im *Importer) writeEntry(name string, r io.Reader) error {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: unsafe entry path %q", ErrExtractionFailed, name)
	}

	target := filepath.Join(im.addonsDir, rel)
	if err := fsutil.EnsureDir(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return nil
}

// normalizeThumbnails converts PNG previews that accompany an addon into
// the .jpg sibling the game and the scanner look for. Conversion failures
// only cost the preview, so they are logged and ignored.
func (im *Importer) normalizeThumbnails() {
	pngs, err := filepath.Glob(filepath.Join(im.addonsDir, "*.png"))
	if err != nil {
		return
	}

	for _, png := range pngs {
		stem := strings.TrimSuffix(filepath.Base(png), ".png")
		vpkPath := filepath.Join(im.addonsDir, stem+model.VPKExt)
		if _, err := os.Stat(vpkPath); err != nil {
			continue
		}
		jpgPath := filepath.Join(im.addonsDir, stem+model.ThumbnailExt)
		if _, err := os.Stat(jpgPath); err == nil {
			continue // addon already ships a .jpg
		}

		data, err := os.ReadFile(png)
		if err != nil {
			continue
		}
		jpg, err := fsutil.ConvertThumbnailToJPEG(data)
		if err != nil {
			logging.Warn("thumbnail conversion failed",
				logging.String("path", png), logging.Err(err))
			continue
		}
		if err := os.WriteFile(jpgPath, jpg, 0644); err != nil {
			logging.Warn("thumbnail write failed",
				logging.String("path", jpgPath), logging.Err(err))
			continue
		}
		os.Remove(png)
	}
}
