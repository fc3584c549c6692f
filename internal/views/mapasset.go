package views

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"

	"github.com/jengzang/citibike-dashboard-go/internal/spatial"
)

// AssetNotFoundError reports a missing auxiliary file such as the map document
type AssetNotFoundError struct {
	Path string
	Err  error
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset not found: %s", e.Path)
}

func (e *AssetNotFoundError) Unwrap() error { return e.Err }

// The exported map keeps the default San Francisco viewport of the map tool;
// these match its centre coordinates so they can be moved to the dataset's city.
var (
	longitudeToken = regexp.MustCompile(`(longitude"?\s*:\s*)-122(?:\.\d*|\b)`)
	latitudeToken  = regexp.MustCompile(`(latitude"?\s*:\s*)37(?:\.\d*|\b)`)
)

// LoadMapAsset reads the pre-rendered map document name from fsys and moves
// its viewport to center
func LoadMapAsset(fsys fs.FS, name string, center spatial.Coordinate) (string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &AssetNotFoundError{Path: name, Err: err}
		}
		return "", fmt.Errorf("failed to read map asset %s: %w", name, err)
	}
	return Recenter(string(b), center), nil
}

// Recenter replaces the placeholder viewport coordinates of a map document
func Recenter(doc string, center spatial.Coordinate) string {
	lng := strconv.FormatFloat(center.Lng, 'f', 4, 64)
	lat := strconv.FormatFloat(center.Lat, 'f', 4, 64)
	doc = longitudeToken.ReplaceAllString(doc, "${1}"+lng)
	doc = latitudeToken.ReplaceAllString(doc, "${1}"+lat)
	return doc
}
