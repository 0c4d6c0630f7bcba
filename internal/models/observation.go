package models

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// TimestampLayout is the ISO-8601 form used for captured timestamps, always in UTC
// with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ErrInvalidCoordinate is returned when a coordinate is neither a JSON string nor a JSON number.
var ErrInvalidCoordinate = errors.New("coordinate must be a string or a number")

// Observation is one captured visit: who asked (IP, user agent), where from, and when.
type Observation struct {
	Timestamp time.Time // Timestamp is assigned by the writer, never by the client.
	IP        string    // IP is the visitor address as seen by the server.
	Lat       string    // Lat is the latitude exactly as received.
	Lon       string    // Lon is the longitude exactly as received.
	UserAgent string    // UserAgent is the client identification string.
}

type observationJSON struct {
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	UserAgent string `json:"userAgent"`
}

// MarshalJSON renders the observation with the same timestamp form the backup file uses,
// so exports look alike regardless of which store served them.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{
		Timestamp: o.Timestamp.UTC().Format(TimestampLayout),
		IP:        o.IP,
		Lat:       o.Lat,
		Lon:       o.Lon,
		UserAgent: o.UserAgent,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw observationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
	if err != nil {
		return err
	}

	*o = Observation{Timestamp: ts.UTC(), IP: raw.IP, Lat: raw.Lat, Lon: raw.Lon, UserAgent: raw.UserAgent}

	return nil
}

// ObservationInput is the body accepted by the ingestion endpoint.
// Values may not contain the '|' delimiter of the backup file format.
type ObservationInput struct {
	IP        string     `json:"ip"        validate:"required,max=64,excludes=|"`
	Lat       Coordinate `json:"lat"       validate:"required,max=32,excludes=|"`
	Lon       Coordinate `json:"lon"       validate:"required,max=32,excludes=|"`
	UserAgent string     `json:"userAgent" validate:"max=512,excludes=|"`
}

// Observation converts the input to an observation without a timestamp.
func (in ObservationInput) Observation() Observation {
	return Observation{IP: in.IP, Lat: string(in.Lat), Lon: string(in.Lon), UserAgent: in.UserAgent}
}

// Coordinate keeps a latitude or longitude as text. Browsers post numbers,
// older clients post strings; both are accepted and stored verbatim.
type Coordinate string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}

	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return ErrInvalidCoordinate
	}
	*c = Coordinate(data)

	return nil
}
