package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementVerification = "verification"
	measurementRun          = "verification_run"
)

// Verification is one device verdict as recorded in InfluxDB.
type Verification struct {
	Device     string
	Valid      bool
	Kind       string // error class for rejected devices, empty when valid
	Composite  bool
	Components int
	Behaviours int
	Duration   time.Duration
	CheckedAt  time.Time
}

// WriteVerification records the verdict for one device.
//
// Tags carry the device name, the verdict and the error kind so failures
// can be grouped per class; counts and timing are fields. The write is
// non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteVerification(v Verification) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"device": v.Device,
		"valid":  boolTag(v.Valid),
	}
	if v.Kind != "" {
		tags["kind"] = v.Kind
	}

	ts := v.CheckedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	c.writeAPI.WritePoint(write.NewPoint(
		measurementVerification,
		tags,
		map[string]interface{}{
			"composite":   v.Composite,
			"components":  v.Components,
			"behaviours":  v.Behaviours,
			"duration_us": v.Duration.Microseconds(),
		},
		ts,
	))
}

// WriteRun records the summary of a batch verification run.
func (c *Client) WriteRun(accepted, rejected int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		measurementRun,
		nil,
		map[string]interface{}{
			"accepted":    accepted,
			"rejected":    rejected,
			"duration_us": duration.Microseconds(),
		},
		time.Now(),
	))
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
