package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cajomferro/shelley-sub001/internal/infrastructure/config"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/influxdb"
)

// fakeServer answers the InfluxDB ping and write endpoints and records
// every line-protocol body it receives.
type fakeServer struct {
	*httptest.Server
	mu     sync.Mutex
	writes []string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/write") {
			body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server
			fs.mu.Lock()
			fs.writes = append(fs.writes, string(body))
			fs.mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) body() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return strings.Join(fs.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "shelley-test-token",
		Org:           "shelley",
		Bucket:        "verification",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	srv := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := newFakeServer(t)
	url := srv.URL
	srv.Close()

	_, err := influxdb.Connect(testConfig(url))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	srv := newFakeServer(t)
	cfg := testConfig(srv.URL)
	cfg.BatchSize = 0
	cfg.FlushInterval = -1

	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWriteVerification(t *testing.T) {
	srv := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.WriteVerification(influxdb.Verification{
		Device:     "DeskLamp",
		Valid:      true,
		Composite:  true,
		Components: 4,
		Behaviours: 6,
		Duration:   1500 * time.Microsecond,
	})
	client.WriteVerification(influxdb.Verification{
		Device: "BrokenLamp",
		Kind:   "composition",
	})
	client.Flush()

	body := srv.body()
	for _, want := range []string{
		"verification,device=DeskLamp,valid=true",
		"components=4i",
		"behaviours=6i",
		"duration_us=1500i",
		"verification,device=BrokenLamp,kind=composition,valid=false",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("written points missing %q:\n%s", want, body)
		}
	}
}

func TestWriteRun(t *testing.T) {
	srv := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.WriteRun(3, 1, time.Millisecond)
	client.Flush()

	body := srv.body()
	if !strings.Contains(body, "verification_run accepted=3i") || !strings.Contains(body, "rejected=1i") {
		t.Errorf("written points = %q", body)
	}
}

func TestClose(t *testing.T) {
	srv := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close() error = %v, want ErrNotConnected", err)
	}

	// writes after close are dropped
	client.WriteVerification(influxdb.Verification{Device: "Late"})
	client.Flush()
	if strings.Contains(srv.body(), "Late") {
		t.Error("point written after Close()")
	}
}

func TestClose_Nil(t *testing.T) {
	client := &influxdb.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
