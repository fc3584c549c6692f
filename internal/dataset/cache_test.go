package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

type countingSource struct {
	key   string
	loads int
	err   error
}

func (s *countingSource) Key() (string, error) { return s.key, nil }

func (s *countingSource) Load(context.Context) (*models.Dataset, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Dataset{Source: s.key, Trips: make([]models.Trip, s.loads)}, nil
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, c.Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestCache_MemoizesByKey(t *testing.T) {
	t.Parallel()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	c := NewCache(m, nil)
	src := &countingSource{key: "/data/trips.csv@1"}

	first, err := c.Get(context.Background(), src)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), src)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.loads)
	assert.Equal(t, 1, c.Len())
	assert.InDelta(t, 1, counterValue(t, m.CacheLookupsTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, counterValue(t, m.CacheLookupsTotal.WithLabelValues("miss")), 0)

	assert.Equal(t, 1, c.Invalidate())
	_, err = c.Get(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.loads)
}

func TestCache_NewVersionReplacesOld(t *testing.T) {
	t.Parallel()

	c := NewCache(nil, nil)
	src := &countingSource{key: "/data/trips.csv@1"}
	_, err := c.Get(context.Background(), src)
	require.NoError(t, err)

	src.key = "/data/trips.csv@2"
	ds, err := c.Get(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 1, c.Len())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	c := NewCache(nil, nil)
	src := &countingSource{key: "k@1", err: errors.New("boom")}

	_, err := c.Get(context.Background(), src)
	require.Error(t, err)
	_, err = c.Get(context.Background(), src)
	require.Error(t, err)

	assert.Equal(t, 2, src.loads)
	assert.Zero(t, c.Len())
}

func TestCache_ReloadsWhenFileChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trips.csv")
	require.NoError(t, os.WriteFile(path, []byte("started_at,start_station_name\n2022-01-01 10:00:00,A\n"), 0o644))

	c := NewCache(nil, nil)
	src := NewCSVSource(path)
	ds, err := c.Get(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	require.NoError(t, os.WriteFile(path, []byte("started_at,start_station_name\n2022-01-01 10:00:00,A\n2022-01-01 11:00:00,B\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	ds, err = c.Get(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoadOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, metrics.OutcomeNotFound, loadOutcome(&SourceNotFoundError{Path: "x"}))
	assert.Equal(t, metrics.OutcomeFormatError, loadOutcome(&DataFormatError{Source: "x"}))
	assert.Equal(t, metrics.OutcomeError, loadOutcome(errors.New("other")))
}
