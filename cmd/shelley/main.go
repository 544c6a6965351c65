// Shelley - composite device verifier
//
// This is the main entry point for the Shelley verifier. On startup it
// verifies the configured device manifests, declaring every accepted device
// in the registry. With the HTTP API or MQTT enabled it then keeps serving
// verification requests until interrupted; otherwise it exits, non-zero when
// any device was rejected.
//
// Usage:
//
//	shelley [manifest ...]
//
// Manifest arguments replace verifier.manifest_paths from the configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/cajomferro/shelley-sub001/migrations"

	"github.com/cajomferro/shelley-sub001/internal/api"
	"github.com/cajomferro/shelley-sub001/internal/composition"
	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/config"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/database"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/influxdb"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/logging"
	"github.com/cajomferro/shelley-sub001/internal/infrastructure/mqtt"
	"github.com/cajomferro/shelley-sub001/internal/manifest"
	"github.com/cajomferro/shelley-sub001/internal/verify"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// ErrRejected is returned by a one-shot run that rejected at least one device.
var ErrRejected = errors.New("one or more devices rejected")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Manifest paths overriding the configuration (may be empty)
//
// Returns:
//   - error: nil on clean shutdown, ErrRejected if a one-shot run rejected
//     a device, or an error describing the failure
func run(ctx context.Context, args []string) error {
	log := logging.Default()
	log.Info("starting Shelley",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) > 0 {
		cfg.Verifier.ManifestPaths = args
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	checker := composition.New()
	checker.SetLogger(log)

	registry := device.NewRegistry(device.NewSQLiteRepository(db.DB), checker.Check)
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", registry.GetDeviceCount())

	verifier := verify.NewService(registry)
	verifier.SetLogger(log)
	verifier.SetStore(verify.NewSQLiteReportStore(db.DB))
	verifier.SetFailFast(cfg.Verifier.FailFast)

	checks := map[string]api.HealthChecker{"database": db}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = startMQTT(cfg.MQTT, verifier, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		verifier.SetPublisher(mqttClient)
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		verifier.SetMetrics(influxClient)
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	summary, err := verifyManifests(ctx, cfg.Verifier.ManifestPaths, registry, verifier, log)
	if err != nil {
		return fmt.Errorf("verifying manifests: %w", err)
	}

	if !cfg.API.Enabled && !cfg.MQTT.Enabled {
		log.Info("Shelley stopped")
		if !summary.OK() {
			return fmt.Errorf("%w: %d of %d", ErrRejected, summary.Rejected, len(summary.Reports))
		}
		return nil
	}

	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log,
			Registry: registry,
			Verifier: verifier,
			Checks:   checks,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
		log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	log.Info("Shelley stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SHELLEY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SHELLEY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig loads the configuration file. A missing file at the default
// path falls back to the built-in defaults; an explicit path must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		return config.Default()
	}
	return cfg, err
}

// startMQTT connects to the broker and subscribes to verification requests.
// Every request payload is a YAML manifest; its devices are declared when
// accepted and each verdict is published on the device's result topic.
func startMQTT(cfg config.MQTTConfig, verifier *verify.Service, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)

	topic := mqtt.Topics{}.VerifyRequest()
	err = client.Subscribe(topic, byte(cfg.QoS), func(_ string, payload []byte) error { //nolint:gosec // qos validated by config
		summary, verr := verifier.VerifyManifest(context.Background(), payload)
		if verr != nil {
			return fmt.Errorf("verifying manifest: %w", verr)
		}
		log.Info("verification request handled",
			"accepted", summary.Accepted,
			"rejected", summary.Rejected,
		)
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return client, nil
}

// verifyManifests loads the manifests and verifies every device that is not
// already declared. Previously declared devices stay as stored; changing one
// requires deleting it first.
func verifyManifests(ctx context.Context, paths []string, registry *device.Registry, verifier *verify.Service, log *logging.Logger) (*verify.Summary, error) {
	if len(paths) == 0 {
		log.Info("no manifests configured")
		return &verify.Summary{}, nil
	}

	decls, err := manifest.Load(paths...)
	if err != nil {
		return nil, err
	}

	pending := decls[:0:0]
	for _, d := range decls {
		if _, ok := registry.Lookup(d.Name); ok {
			log.Info("device already declared, skipping", "device", d.Name)
			continue
		}
		pending = append(pending, d)
	}

	summary, err := verifier.VerifyAll(ctx, pending)
	if err != nil {
		return nil, err
	}
	log.Info("manifests verified",
		"paths", paths,
		"devices", len(decls),
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
	)
	return summary, nil
}
