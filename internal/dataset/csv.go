package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// ctxCheckInterval is how many rows are read between context checks
const ctxCheckInterval = 4096

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
	"1/2/2006",
}

// CSVSource reads trips from a CSV file with a header row
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSV source for path
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Key returns the path plus modification time of the file
func (s *CSVSource) Key() (string, error) {
	return fileKey(s.Path)
}

// Load reads and parses the whole file
func (s *CSVSource) Load(ctx context.Context) (*models.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceNotFoundError{Path: s.Path, Err: err}
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.Path, err)
	}

	ds, err := ReadCSV(ctx, f, s.Path)
	if err != nil {
		return nil, err
	}
	ds.ModTime = info.ModTime()
	return ds, nil
}

// ReadCSV parses a trip table from r. name is used as the dataset source and in errors.
func ReadCSV(ctx context.Context, r io.Reader, name string) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataFormatError{Source: name, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &DataFormatError{Source: name, Err: err}
	}
	cols := indexHeader(header)

	for _, required := range []string{models.ColumnStartedAt, models.ColumnStartStationName} {
		if _, ok := cols[required]; !ok {
			return nil, &DataFormatError{Source: name, Column: required, Err: errors.New("required column missing")}
		}
	}

	_, hasCount := cols[models.ColumnTripCount]
	_, hasTemp := cols[models.ColumnAvgTemp]
	_, hasLat := cols[models.ColumnStartLat]
	_, hasLng := cols[models.ColumnStartLng]

	ds := &models.Dataset{
		Source:         name,
		HasTripCount:   hasCount,
		HasTemperature: hasTemp,
		HasCoordinates: hasLat && hasLng,
	}

	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataFormatError{Source: name, Row: row, Err: err}
		}

		trip, perr := parseRecord(record, cols, ds.HasCoordinates)
		if perr != nil {
			perr.Source = name
			perr.Row = row
			return nil, perr
		}
		ds.Trips = append(ds.Trips, trip)
	}

	EnsureTripCount(ds)
	return ds, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func parseRecord(record []string, cols map[string]int, withCoords bool) (models.Trip, *DataFormatError) {
	field := func(col string) (string, bool) {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	var t models.Trip

	raw, _ := field(models.ColumnStartedAt)
	started, err := ParseTimestamp(raw)
	if err != nil {
		return t, &DataFormatError{Column: models.ColumnStartedAt, Value: raw, Err: err}
	}
	t.StartedAt = started
	t.Date = DateOf(started)

	if raw, ok := field(models.ColumnDate); ok && raw != "" {
		d, err := ParseTimestamp(raw)
		if err != nil {
			return t, &DataFormatError{Column: models.ColumnDate, Value: raw, Err: err}
		}
		t.Date = DateOf(d)
	}

	t.StartStationName, _ = field(models.ColumnStartStationName)

	if raw, ok := field(models.ColumnTripCount); ok {
		n, err := parseCount(raw)
		if err != nil {
			return t, &DataFormatError{Column: models.ColumnTripCount, Value: raw, Err: err}
		}
		t.TripCount = n
	}

	if raw, ok := field(models.ColumnAvgTemp); ok {
		v, err := parseOptionalFloat(raw)
		if err != nil {
			return t, &DataFormatError{Column: models.ColumnAvgTemp, Value: raw, Err: err}
		}
		t.AvgTemp = v
	}

	if withCoords {
		rawLat, _ := field(models.ColumnStartLat)
		lat, err := parseOptionalFloat(rawLat)
		if err != nil {
			return t, &DataFormatError{Column: models.ColumnStartLat, Value: rawLat, Err: err}
		}
		rawLng, _ := field(models.ColumnStartLng)
		lng, err := parseOptionalFloat(rawLng)
		if err != nil {
			return t, &DataFormatError{Column: models.ColumnStartLng, Value: rawLng, Err: err}
		}
		if lat != nil && lng != nil {
			t.StartLat, t.StartLng = lat, lng
		}
	}

	return t, nil
}

// ParseTimestamp parses a timezone-naive timestamp. Zoned inputs keep their
// wall clock and drop the offset.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, errors.New("unrecognised timestamp format")
}

// DateOf truncates a timestamp to its calendar day
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty trip count")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("trip count is not a whole number")
	}
	return int(f), nil
}

// parseOptionalFloat returns nil for empty and NaN cells
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}
