package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/waypoint/internal/filestore"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, primary repository.PrimaryStore, backupPath string) *TrackerService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewTrackerService(logger, primary, filestore.New(backupPath), metrics.NewMetrics(prometheus.NewRegistry()))

	clock := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return svc
}

func TestIngest(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	ctx := t.Context()
	input := models.Observation{IP: "1.2.3.4", Lat: "51.5", Lon: "-0.12", UserAgent: "TestAgent/1.0"}

	t.Run("primary store down still succeeds", func(t *testing.T) {
		primary := mocks.NewPrimaryStore(t)
		path := filepath.Join(dir, "down.txt")
		svc := newTestService(t, primary, path)

		primary.On("Save", ctx, mock.AnythingOfType("models.Observation")).Return(repository.ErrUnavailable).Once()

		stored, err := svc.Ingest(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 1, 9, 0, 1, 0, time.UTC), stored.Timestamp)
		assert.True(t, filet.FileSays(t, path,
			[]byte("2025-06-01T09:00:01.000Z | IP: 1.2.3.4 | Lat: 51.5 | Lon: -0.12 | UA: TestAgent/1.0\n")))
		assert.InDelta(t, 1, testutil.ToFloat64(svc.metrics.PrimaryStoreErrors), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(svc.metrics.Ingested), 0)
	})

	t.Run("writes to both stores", func(t *testing.T) {
		primary := mocks.NewPrimaryStore(t)
		path := filepath.Join(dir, "both.txt")
		svc := newTestService(t, primary, path)

		expected := input
		expected.Timestamp = time.Date(2025, time.June, 1, 9, 0, 1, 0, time.UTC)
		primary.On("Save", ctx, expected).Return(nil).Once()

		_, err := svc.Ingest(ctx, input)

		require.NoError(t, err)
		assert.True(t, filet.Exists(t, path))
		assert.InDelta(t, 0, testutil.ToFloat64(svc.metrics.PrimaryStoreErrors), 0)
	})

	t.Run("timestamp from the client is overwritten", func(t *testing.T) {
		path := filepath.Join(dir, "stamp.txt")
		svc := newTestService(t, repository.Disconnected{}, path)

		forged := input
		forged.Timestamp = time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

		stored, err := svc.Ingest(ctx, forged)

		require.NoError(t, err)
		assert.Equal(t, 2025, stored.Timestamp.Year())
	})

	t.Run("error - backup file not writable", func(t *testing.T) {
		svc := newTestService(t, repository.Disconnected{}, filepath.Join(dir, "missing", "logs.txt"))

		_, err := svc.Ingest(ctx, input)

		require.ErrorIs(t, err, ErrFileIO)
		assert.InDelta(t, 1, testutil.ToFloat64(svc.metrics.BackupWriteErrors), 0)
	})
}

func TestObservations(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	ctx := t.Context()

	t.Run("backup file keeps write order", func(t *testing.T) {
		path := filepath.Join(dir, "order.txt")
		svc := newTestService(t, repository.Disconnected{}, path)

		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			_, err := svc.Ingest(ctx, models.Observation{IP: ip, Lat: "1", Lon: "2", UserAgent: "ua"})
			require.NoError(t, err)
		}

		source, observations, err := svc.Observations(ctx)

		require.NoError(t, err)
		assert.Equal(t, SourceBackup, source)
		require.Len(t, observations, 3)
		assert.Equal(t, "10.0.0.1", observations[0].IP)
		assert.Equal(t, "10.0.0.2", observations[1].IP)
		assert.Equal(t, "10.0.0.3", observations[2].IP)
	})

	t.Run("primary store when available", func(t *testing.T) {
		primary := mocks.NewPrimaryStore(t)
		svc := newTestService(t, primary, filepath.Join(dir, "unused.txt"))
		rows := []models.Observation{
			{Timestamp: time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), IP: "newer"},
			{Timestamp: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), IP: "older"},
		}

		primary.On("IsAvailable", ctx).Return(true).Once()
		primary.On("FindAllNewestFirst", ctx).Return(rows, nil).Once()

		source, observations, err := svc.Observations(ctx)

		require.NoError(t, err)
		assert.Equal(t, SourcePrimary, source)
		assert.Equal(t, rows, observations)
	})

	t.Run("error - primary store query fails", func(t *testing.T) {
		primary := mocks.NewPrimaryStore(t)
		svc := newTestService(t, primary, filepath.Join(dir, "unused.txt"))

		primary.On("IsAvailable", ctx).Return(true).Once()
		primary.On("FindAllNewestFirst", ctx).Return(nil, assert.AnError).Once()

		source, observations, err := svc.Observations(ctx)

		require.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, SourcePrimary, source)
		assert.Nil(t, observations)
	})

	t.Run("error - backup file missing", func(t *testing.T) {
		svc := newTestService(t, repository.Disconnected{}, filepath.Join(dir, "absent.txt"))

		source, observations, err := svc.Observations(ctx)

		require.ErrorIs(t, err, ErrFileIO)
		require.ErrorIs(t, err, filestore.ErrNotFound)
		assert.Equal(t, SourceBackup, source)
		assert.Nil(t, observations)
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		path := filepath.Join(dir, "mixed.txt")
		filet.File(t, path, "2025-06-01T09:00:00.000Z | IP: 1.1.1.1 | Lat: 1 | Lon: 2 | UA: ok\n"+
			"garbage\n"+
			"2025-06-01T09:00:05.000Z | IP: 2.2.2.2 | Lat: 3 | Lon: 4 | UA: ok\n")
		svc := newTestService(t, repository.Disconnected{}, path)

		_, observations, err := svc.Observations(ctx)

		require.NoError(t, err)
		require.Len(t, observations, 2)
		assert.Equal(t, "2.2.2.2", observations[1].IP)
		assert.InDelta(t, 1, testutil.ToFloat64(svc.metrics.MalformedRecords), 0)
	})
}
