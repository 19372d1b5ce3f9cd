package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/resilience"
	"luxury-tycoon/internal/session"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/internal/stream"
)

// writeJSON sends a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

// writeError sends {"error": message}.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// rejectionStatus maps a dispatch error to an HTTP status.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, errors.ErrSessionClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrSpinUsed), errors.Is(err, errors.ErrRewardClaimed), errors.Is(err, errors.ErrItemOwned):
		return http.StatusConflict
	case errors.Is(err, errors.ErrInstrumentNotFound), errors.Is(err, errors.ErrItemNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) writeResult(w http.ResponseWriter, res session.Result) {
	if res.Accepted {
		s.writeJSON(w, http.StatusOK, res)
		return
	}
	s.writeJSON(w, rejectionStatus(res.Err), res)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrMalformedAction, err.Error())
	}
	return data, nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	action, err := DecodeAction(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, s.session.Dispatch(r.Context(), action))
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	out, err := s.session.Spin(r.Context())
	if err != nil {
		s.writeJSON(w, rejectionStatus(err), out)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

type convertRequest struct {
	Gems decimal.Decimal `json:"gems"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var req convertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrMalformedAction, err.Error()))
		return
	}
	res, err := s.session.ConvertPremium(r.Context(), req.Gems)
	if err != nil {
		s.writeJSON(w, rejectionStatus(err), res)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleJournal lists journal rows. Query parameters:
//
//	view     actions (default) or snapshots
//	session  session id, "all", or empty for the running session
//	kind     action kind filter
//	accepted "true" to hide rejections
//	limit    newest N rows
//	format   json (default) or csv
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeError(w, http.StatusNotFound, errors.ErrJournalDisabled)
		return
	}

	q := r.URL.Query()
	sessionID := q.Get("session")
	switch sessionID {
	case "":
		sessionID = s.session.ID()
	case "all":
		sessionID = ""
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, errors.NewValidationError("limit", raw, "must be a non-negative integer"))
			return
		}
		limit = n
	}
	csvOut := q.Get("format") == "csv"

	switch q.Get("view") {
	case "", "actions":
		filter := store.ActionFilter{
			SessionID:    sessionID,
			Kind:         q.Get("kind"),
			AcceptedOnly: q.Get("accepted") == "true",
			Limit:        limit,
		}
		rows, err := s.journal.ListActions(r.Context(), filter)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if csvOut {
			w.Header().Set("Content-Type", "text/csv")
			if err := store.WriteActionsCSV(w, rows); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to write journal CSV")
			}
			return
		}
		s.writeJSON(w, http.StatusOK, rows)

	case "snapshots":
		rows, err := s.journal.ListSnapshots(r.Context(), sessionID, limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if csvOut {
			w.Header().Set("Content-Type", "text/csv")
			if err := store.WriteSnapshotsCSV(w, rows); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to write journal CSV")
			}
			return
		}
		s.writeJSON(w, http.StatusOK, rows)

	default:
		s.writeError(w, http.StatusBadRequest, errors.NewValidationError("view", q.Get("view"), "must be actions or snapshots"))
	}
}

type healthResponse struct {
	Status  string                   `json:"status"`
	Version string                   `json:"version,omitempty"`
	Session string                   `json:"session"`
	State   uint64                   `json:"state_version"`
	Uptime  string                   `json:"uptime"`
	Hub     stream.HubMetrics        `json:"hub"`
	Journal *resilience.BreakerStats `json:"journal,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: s.version,
		Session: s.session.ID(),
		State:   s.session.State().Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Hub:     s.hub.Metrics(),
	}
	if !s.hub.IsStarted() {
		resp.Status = "degraded"
	}
	if stats, ok := s.session.JournalStats(); ok {
		resp.Journal = &stats
		if stats.State != resilience.CircuitClosed {
			resp.Status = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
