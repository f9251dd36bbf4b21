package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/beta"
	"github.com/seenimoa/regwacc/internal/capm"
	"github.com/seenimoa/regwacc/internal/presets"
	"github.com/seenimoa/regwacc/pkg/models"
	"github.com/seenimoa/regwacc/pkg/utils"
)

// handleCAPM computes cost of equity and, when possible, vanilla WACC.
func (s *Server) handleCAPM(w http.ResponseWriter, r *http.Request) {
	var req models.CAPMRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.svc.Calculate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// handleLever de-levers or re-levers a beta.
func (s *Server) handleLever(w http.ResponseWriter, r *http.Request) {
	var req models.LeverRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := capm.Lever(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// handleBasis converts a rate between real and nominal terms.
func (s *Server) handleBasis(w http.ResponseWriter, r *http.Request) {
	var req models.BasisRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := capm.ConvertBasis(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.svc.Examples().List(),
	})
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	ex, ok := s.svc.Examples().Get(ticker)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown example ticker "+ticker)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ex,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    presets.List(),
	})
}

// handleBeta resolves a comparator beta through the source chain.
func (s *Server) handleBeta(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	est, err := s.svc.ResolveBeta(r.Context(), ticker)
	if errors.Is(err, beta.ErrNoBeta) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    est,
	})
}

// writeServiceError maps calculation errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, capm.ErrMissingBeta):
		writeError(w, http.StatusBadRequest, capm.MissingBetaMessage)
	case capm.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}
