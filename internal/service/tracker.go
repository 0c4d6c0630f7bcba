package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/filestore"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/record"
	"github.com/UnknownOlympus/waypoint/internal/repository"
)

// ErrFileIO is returned when the backup file cannot be written or read.
var ErrFileIO = errors.New("backup file I/O failed")

// Source names the store a read was served from.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceBackup  Source = "backup"
)

// BackupFile is the local append-only file every observation is written to.
type BackupFile interface {
	Append(line string) error
	ReadAll() ([]string, error)
}

// TrackerService writes observations to both stores and reads them back from
// whichever one is available.
type TrackerService struct {
	log     *slog.Logger
	primary repository.PrimaryStore
	backup  BackupFile
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTrackerService creates a TrackerService. Pass repository.Disconnected{} as primary
// when no database is configured.
func NewTrackerService(
	log *slog.Logger,
	primary repository.PrimaryStore,
	backup BackupFile,
	metrics *metrics.Metrics,
) *TrackerService {
	return &TrackerService{log: log, primary: primary, backup: backup, metrics: metrics, now: time.Now}
}

// Ingest stamps the observation and stores it. A primary store failure is logged and
// dropped; only a failed append to the backup file is returned.
func (ts *TrackerService) Ingest(ctx context.Context, obs models.Observation) (models.Observation, error) {
	obs.Timestamp = ts.now().UTC().Truncate(time.Millisecond)

	if err := ts.primary.Save(ctx, obs); err != nil {
		ts.metrics.PrimaryStoreErrors.Inc()
		ts.log.WarnContext(ctx, "Primary store save failed, relying on backup file", "error", err)
	} else {
		ts.log.DebugContext(ctx, "Observation saved to primary store", "ip", obs.IP)
	}

	if err := ts.backup.Append(record.Format(obs)); err != nil {
		ts.metrics.BackupWriteErrors.Inc()
		return obs, fmt.Errorf("%w: %w", ErrFileIO, err)
	}
	ts.metrics.Ingested.Inc()

	return obs, nil
}

// Observations returns every stored observation. The primary store is used when it is
// available and yields newest first; otherwise the backup file is read in file order.
func (ts *TrackerService) Observations(ctx context.Context) (Source, []models.Observation, error) {
	if ts.primary.IsAvailable(ctx) {
		ts.metrics.ReadsBySource.WithLabelValues(string(SourcePrimary)).Inc()
		observations, err := ts.primary.FindAllNewestFirst(ctx)
		if err != nil {
			return SourcePrimary, nil, fmt.Errorf("failed to load observations from primary store: %w", err)
		}

		return SourcePrimary, observations, nil
	}

	ts.metrics.ReadsBySource.WithLabelValues(string(SourceBackup)).Inc()
	lines, err := ts.backup.ReadAll()
	if err != nil {
		return SourceBackup, nil, fmt.Errorf("%w: %w", ErrFileIO, err)
	}

	observations := make([]models.Observation, 0, len(lines))
	for idx, line := range lines {
		obs, errParse := record.Parse(line)
		if errParse != nil {
			ts.metrics.MalformedRecords.Inc()
			ts.log.WarnContext(ctx, "Skipping malformed backup line", "line", idx+1, "error", errParse)
			continue
		}
		observations = append(observations, obs)
	}

	return SourceBackup, observations, nil
}

var _ BackupFile = (*filestore.Store)(nil)
