// Package dataset loads trip tables from files and memoizes them per source version.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// Source produces a trip dataset
type Source interface {
	// Key identifies the current version of the source (path plus modification time)
	Key() (string, error)
	// Load reads the full dataset
	Load(ctx context.Context) (*models.Dataset, error)
}

// fileKey builds a cache key from an absolute path and its modification time
func fileKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &SourceNotFoundError{Path: path, Err: err}
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s@%d", abs, info.ModTime().UnixNano()), nil
}

// EnsureTripCount gives every row a trip count of 1 when the source had no
// trip_count column, so that summing counts equals counting rows.
// Running it more than once leaves the rows unchanged.
func EnsureTripCount(d *models.Dataset) {
	if d == nil || d.HasTripCount {
		return
	}
	for i := range d.Trips {
		d.Trips[i].TripCount = 1
	}
}
