package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cajomferro/shelley-sub001/internal/device"
	"github.com/cajomferro/shelley-sub001/internal/manifest"
	"github.com/cajomferro/shelley-sub001/internal/verify"
)

// verifyResponse is the body of POST /verify.
type verifyResponse struct {
	OK       bool `json:"ok"`
	Declared bool `json:"declared"`
	*verify.Summary
}

// handleVerify verifies the YAML manifest in the request body.
//
// Query parameters:
//   - declare: "true" adds accepted devices to the registry; default is a dry run
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	declare := false
	if v := r.URL.Query().Get("declare"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "declare must be true or false")
			return
		}
		declare = b
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "manifest too large")
			return
		}
		writeBadRequest(w, "failed to read request body")
		return
	}
	if len(data) == 0 {
		writeBadRequest(w, "manifest is empty")
		return
	}

	var summary *verify.Summary
	if declare {
		summary, err = s.verifier.VerifyManifest(r.Context(), data)
	} else {
		summary, err = s.verifier.CheckManifest(r.Context(), data)
	}
	if err != nil {
		switch {
		case errors.Is(err, manifest.ErrInvalidManifest):
			writeError(w, http.StatusBadRequest, ErrCodeManifest, err.Error())
		case errors.Is(err, device.ErrDuplicate), errors.Is(err, device.ErrDependencyCycle):
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("verification failed", "error", err, "declare", declare)
			writeInternalError(w, "verification failed")
		}
		return
	}

	if summary.Reports == nil {
		summary.Reports = []verify.Report{}
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		OK:       summary.OK(),
		Declared: declare,
		Summary:  summary,
	})
}
