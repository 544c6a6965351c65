// Package influxdb records verification runs in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes and health monitoring.
//
// # Measurements
//
//	verification      tags: device, valid, kind
//	                  fields: composite, components, behaviours, duration_us
//	verification_run  fields: accepted, rejected, duration_us
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteVerification(influxdb.Verification{Device: "DeskLamp", Valid: true})
//
// # Error Handling
//
// Writes are non-blocking; batch errors are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
