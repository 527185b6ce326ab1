package archive

import (
	"fmt"
	"os"

	"github.com/handiism/l4d2-addon-manager/internal/logging"
	"github.com/handiism/l4d2-addon-manager/internal/model"
)

// DeleteResult reports the outcome of a best-effort delete batch.
type DeleteResult struct {
	// Deleted counts primary addon files that were removed.
	Deleted int

	// Failed counts primary addon files that could not be removed.
	Failed int
}

// DeleteAddons removes each addon's file and, when present, its thumbnail.
//
// The batch is best-effort: one addon failing does not abort the rest.
// Only primary files count toward Deleted; thumbnails are removed
// opportunistically. When any primary file fails, the returned error
// matches ErrDeleteFailed and the result still carries both counts.
func DeleteAddons(addons []model.Addon) (*DeleteResult, error) {
	if len(addons) == 0 {
		return nil, ErrNoFilesSelected
	}

	res := &DeleteResult{}
	for _, addon := range addons {
		if err := os.Remove(addon.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			logging.Warn("addon delete failed",
				logging.String("path", addon.Path), logging.Err(err))
			res.Failed++
			continue
		}
		res.Deleted++

		if addon.ThumbnailPath != "" {
			if err := os.Remove(addon.ThumbnailPath); err != nil && !os.IsNotExist(err) {
				logging.Warn("thumbnail delete failed",
					logging.String("path", addon.ThumbnailPath), logging.Err(err))
			}
		}
	}

	if res.Failed > 0 {
		return res, fmt.Errorf("%w: %d of %d files", ErrDeleteFailed, res.Failed, len(addons))
	}
	return res, nil
}
