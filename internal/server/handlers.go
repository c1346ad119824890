package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/resale-cli/internal/model"
	"github.com/sells-group/resale-cli/internal/valuation"
)

const maxRequestBytes = 64 << 10

type compareRequest struct {
	Vehicle model.SourceVehicle `json:"vehicle"`
	Site    string              `json:"site"`
}

type marginRequest struct {
	Vehicle model.SourceVehicle `json:"vehicle"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decode(w, r, &req) {
		return
	}

	site := model.SiteLeboncoin
	if strings.TrimSpace(req.Site) != "" {
		parsed, err := model.ParseSite(req.Site)
		if err != nil {
			writeError(w, r, err)
			return
		}
		site = parsed
	}

	res, err := s.svc.Compare(r.Context(), req.Vehicle, site)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMargin(w http.ResponseWriter, r *http.Request) {
	var req marginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.svc.Margin(r.Context(), req.Vehicle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("price")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Paramètre price invalide."})
		return
	}
	fees, err := s.fees.Calculate(price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fees)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Corps de requête JSON invalide."})
		return false
	}
	return true
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch model.ErrorKind(err) {
	case "incomplete_input", "unknown_source":
		return http.StatusBadRequest
	case "no_listings_found", "no_matches_found", "no_valid_prices", "no_prices_found":
		return http.StatusNotFound
	case "fetch_failed":
		return http.StatusBadGateway
	}
	if errors.Is(err, valuation.ErrInvalidPrice) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: model.ErrorKind(err), Message: model.UserMessage(err)}
	if errors.Is(err, valuation.ErrInvalidPrice) {
		resp = errorResponse{Error: "invalid_request", Message: "Paramètre price invalide."}
	}

	log := zap.L().With(zap.String("request_id", RequestID(r.Context())), zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error("server: request failed", zap.Int("status", status))
	} else {
		log.Info("server: request rejected", zap.Int("status", status), zap.String("kind", resp.Error))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}
