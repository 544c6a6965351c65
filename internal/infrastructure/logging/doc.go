// Package logging provides structured logging for the Shelley verifier.
//
// This package wraps Go's standard log/slog package:
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("verification finished", "devices", 4, "rejected", 0)
//
// Never log secrets such as the MQTT password or the InfluxDB token.
package logging
