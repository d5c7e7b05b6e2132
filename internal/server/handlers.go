package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"agenticerp/internal/logging"
	"agenticerp/internal/reports"
	"agenticerp/internal/router"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 64 << 10

// TextRequest is the body of the route and ask endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.APIError("Encoding response failed: %v", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TextRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		respondError(w, r, http.StatusBadRequest, "text is required")
		return "", false
	}
	return text, true
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, router.Classify(text))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}
	resp, err := s.deps.Router.Route(r.Context(), text)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func reportStatus(res reports.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case reports.ErrorTimeout:
		return http.StatusGatewayTimeout
	case reports.ErrorUnknownKind:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["kind"]

	if strings.EqualFold(name, "all") {
		results := s.deps.Reports.BuildAll(r.Context())
		status := http.StatusOK
		for _, res := range results {
			if !res.OK() {
				status = http.StatusMultiStatus
				break
			}
		}
		respondJSON(w, status, results)
		return
	}

	kind, err := reports.ParseKind(name)
	if err != nil {
		if errors.Is(err, reports.ErrUnknownKind) {
			respondError(w, r, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := s.deps.Reports.Build(r.Context(), kind)
	respondJSON(w, reportStatus(res), res)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.deps.Tables.ListTables(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Tables.ListTables(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
