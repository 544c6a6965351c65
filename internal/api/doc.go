// Package api implements the HTTP REST API of the Shelley verifier.
//
// This package provides:
//   - Device endpoints over the registry (list, get, delete, report history)
//   - A verification endpoint accepting YAML manifests
//   - A health endpoint aggregating the infrastructure health checks
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Routes
//
//	GET    /api/v1/health
//	GET    /api/v1/devices
//	GET    /api/v1/devices/{name}
//	DELETE /api/v1/devices/{name}
//	GET    /api/v1/devices/{name}/reports?limit=N
//	POST   /api/v1/verify?declare=true
//
// POST /verify is a dry run unless declare=true; accepted devices are then
// added to the registry. Rejected devices are part of a 200 response: the
// verdict is in the body, not the status code.
package api
