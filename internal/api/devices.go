package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/verify"
)

// maxReportLimit caps the limit query parameter of the reports endpoint.
const maxReportLimit = 500

// deviceResponse is the JSON view of a declared device.
type deviceResponse struct {
	Name        string             `json:"name"`
	Composite   bool               `json:"composite"`
	Declaration device.Declaration `json:"declaration"`
}

func toDeviceResponse(d *device.Device) deviceResponse {
	return deviceResponse{
		Name:        d.Name,
		Composite:   d.IsComposite(),
		Declaration: d.Declaration(),
	}
}

// handleListDevices returns all declared devices ordered by name.
//
// Query parameters:
//   - composite: "true" or "false" to filter by kind
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("composite")
	var want bool
	if filter != "" {
		b, err := strconv.ParseBool(filter)
		if err != nil {
			writeBadRequest(w, "composite must be true or false")
			return
		}
		want = b
	}

	devices := s.registry.ListDevices()
	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		if filter != "" && d.IsComposite() != want {
			continue
		}
		out = append(out, toDeviceResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": out, "count": len(out)})
}

// handleGetDevice returns a single device by name.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	d, err := s.registry.GetDevice(r.Context(), name)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device failed", "name", name, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, toDeviceResponse(d))
}

// handleDeleteDevice removes a device unless another device uses it.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.registry.DeleteDevice(r.Context(), name)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, device.ErrDeviceInUse):
		writeConflict(w, err.Error())
	default:
		s.logger.Error("deleting device failed", "name", name, "error", err)
		writeInternalError(w, "failed to delete device")
	}
}

// handleListReports returns the stored verification reports of a device,
// newest first. Reports outlive the device, so an unknown name is not an error.
//
// Query parameters:
//   - limit: maximum number of reports (default 50, max 500)
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxReportLimit {
			writeBadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	reports, err := s.verifier.Reports(r.Context(), name, limit)
	if err != nil {
		s.logger.Error("listing reports failed", "name", name, "error", err)
		writeInternalError(w, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []verify.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"device": name, "reports": reports, "count": len(reports)})
}
