// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/normalize"
	"github.com/pdiddy/pubscope/internal/source"
)

// stubSource returns fixed rows or an error.
type stubSource struct {
	rows []source.Record
	err  error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(ctx context.Context) ([]source.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rows, s.err
}

var frozen = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return frozen }

func rows() []source.Record {
	return []source.Record{
		{"id": "a", "title": "Bone density study", "year": "2010", "topics": "bone loss"},
		{"id": "b", "title": "Bone density study", "year": "2015", "topics": "bone loss; radiation"},
		{"id": "c", "title": "Radiation shielding", "year": "2020", "topics": "radiation"},
		{"id": "a", "title": "Duplicate", "year": "2021"},
	}
}

func TestReload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.New()
	c := New(&stubSource{rows: rows()}, normalize.New(normalize.WithClock(clock)),
		WithLogger(zap.New(core)), WithMetrics(m), WithClock(clock))

	_, err := c.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, c.Loaded())

	snap, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Publications, 3)
	assert.Len(t, snap.Report.Duplicates, 1)
	assert.Equal(t, frozen, snap.LoadedAt)
	assert.Equal(t, "stub", snap.Source)
	assert.Equal(t, []int{0, 1}, snap.Index.Lookup("bone"))

	got, err := c.Snapshot()
	require.NoError(t, err)
	assert.Same(t, snap, got)

	p, ok := snap.Find("c")
	require.True(t, ok)
	assert.Equal(t, "Radiation shielding", p.Title)
	_, ok = snap.Find("zzz")
	assert.False(t, ok)

	entries := logs.FilterMessage("corpus loaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["publications"])
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CorpusPublications))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CorpusDuplicates))
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	src := &stubSource{rows: rows()}
	m := metrics.New()
	c := New(src, nil, WithMetrics(m))

	first, err := c.Reload(context.Background())
	require.NoError(t, err)

	src.err = errors.New("disk on fire")
	_, err = c.Reload(context.Background())
	assert.ErrorContains(t, err, "disk on fire")

	got, err := c.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CorpusReloads.WithLabelValues("error")))
}

func TestReload_EmptyCorpus(t *testing.T) {
	c := New(&stubSource{rows: nil}, nil)
	_, err := c.Reload(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.False(t, c.Loaded())
}

func TestReloadAsync(t *testing.T) {
	c := New(&stubSource{rows: rows()}, nil)
	select {
	case err := <-c.ReloadAsync(context.Background()):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not finish")
	}
	assert.True(t, c.Loaded())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, <-c.ReloadAsync(ctx), context.Canceled)
}

func TestReload_FromCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubs.csv")
	data := "Title,Authors,Publication Date,PMCID,Abstract\n" +
		"Mice in space,\"Smith J, Doe A\",2017 Apr 11,PMC1,Bone loss in mice\n" +
		"Plants in space,Lee K,2019,PMC2,Arabidopsis roots\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c := New(&source.CSVFile{Path: path}, normalize.New(normalize.WithClock(clock)))
	snap, err := c.Reload(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Publications, 2)
	assert.Equal(t, "PMC1", snap.Publications[0].ID)
	assert.Equal(t, []string{"Smith J", "Doe A"}, snap.Publications[0].Authors)
	assert.Equal(t, 2019, snap.Publications[1].Year)
}
