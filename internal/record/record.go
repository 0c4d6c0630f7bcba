// Package record converts observations to and from the single-line form used by
// the backup file: "<timestamp> | IP: <ip> | Lat: <lat> | Lon: <lon> | UA: <ua>".
//
// The delimiter is not escaped. A value containing '|' splits into an extra
// segment, and Parse rejects the line.
package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

const (
	delimiter    = "|"
	segmentCount = 5
)

var labels = [segmentCount]string{"", "IP:", "Lat:", "Lon:", "UA:"}

// ErrMalformed is returned when a line does not have the expected shape.
var ErrMalformed = errors.New("malformed record")

// Format renders an observation as one newline-terminated line.
func Format(obs models.Observation) string {
	return fmt.Sprintf("%s | IP: %s | Lat: %s | Lon: %s | UA: %s\n",
		obs.Timestamp.UTC().Format(models.TimestampLayout), obs.IP, obs.Lat, obs.Lon, obs.UserAgent)
}

// Parse reads a line produced by Format. Fields are identified by position.
func Parse(line string) (models.Observation, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), delimiter)
	if len(parts) != segmentCount {
		return models.Observation{}, fmt.Errorf("%w: expected %d segments, got %d", ErrMalformed, segmentCount, len(parts))
	}

	var fields [segmentCount]string
	for i, part := range parts {
		part = strings.TrimSpace(part)
		fields[i] = strings.TrimSpace(strings.TrimPrefix(part, labels[i]))
	}

	ts, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return models.Observation{}, fmt.Errorf("%w: bad timestamp %q: %w", ErrMalformed, fields[0], err)
	}

	return models.Observation{
		Timestamp: ts.UTC(),
		IP:        fields[1],
		Lat:       fields[2],
		Lon:       fields[3],
		UserAgent: fields[4],
	}, nil
}
