package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Ingested           prometheus.Counter
	PrimaryStoreErrors prometheus.Counter
	BackupWriteErrors  prometheus.Counter
	MalformedRecords   prometheus.Counter
	ReadsBySource      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Ingested: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_observations_ingested_total",
			Help: "Total number of observations written to the backup file.",
		}),
		PrimaryStoreErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_primary_store_errors_total",
			Help: "Total number of failed writes to the primary store.",
		}),
		BackupWriteErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_backup_write_errors_total",
			Help: "Total number of failed appends to the backup file.",
		}),
		MalformedRecords: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_malformed_records_total",
			Help: "Total number of backup file lines skipped because they could not be parsed.",
		}),
		ReadsBySource: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_reads_total",
			Help: "Total number of listing and export reads, by the store that served them.",
		}, []string{"source"}),
	}
}
