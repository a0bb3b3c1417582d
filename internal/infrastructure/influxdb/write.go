package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementAuthEvents = "auth_events"
	MeasurementTeamEvents = "team_events"
	MeasurementStoreSize  = "store_size"
)

// Auth event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RecordAuthEvent writes one auth_events point.
//
//	client.RecordAuthEvent("login", influxdb.OutcomeFailure)
func (c *Client) RecordAuthEvent(kind, outcome string) {
	c.writePoint(authEventPoint(kind, outcome, time.Now()))
}

// RecordTeamEvent writes one team_events point for a membership change.
func (c *Client) RecordTeamEvent(company, action string) {
	c.writePoint(teamEventPoint(company, action, time.Now()))
}

// RecordStoreSize writes the current user and company counts.
func (c *Client) RecordStoreSize(users, companies int) {
	c.writePoint(storeSizePoint(users, companies, time.Now()))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func authEventPoint(kind, outcome string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementAuthEvents,
		map[string]string{
			"kind":    kind,
			"outcome": outcome,
		},
		map[string]any{
			"count": 1,
		},
		at,
	)
}

func teamEventPoint(company, action string, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementTeamEvents,
		map[string]string{
			"company": company,
			"action":  action,
		},
		map[string]any{
			"count": 1,
		},
		at,
	)
}

func storeSizePoint(users, companies int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementStoreSize,
		nil,
		map[string]any{
			"users":     users,
			"companies": companies,
		},
		at,
	)
}
