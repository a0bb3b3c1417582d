// Package influxdb provides InfluxDB connectivity for FleetAuth.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, event writing and health monitoring.
//
// # Measurements
//
//   - auth_events: tags kind (register, verify, login, refresh, logout)
//     and outcome (success, failure)
//   - team_events: tags company and action (member_added, member_removed,
//     privileges_updated)
//   - store_size: users and companies counts
//
// Emails never appear in tags; cardinality stays bounded by company count.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.RecordAuthEvent("login", "success")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; write errors
// are delivered to the SetOnError callback.
package influxdb
