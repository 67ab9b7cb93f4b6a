package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/internal/report"
	"github.com/wonny/aegis-intraday/internal/universe"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// Scanner runs scans. *scanner.Service implements it.
type Scanner interface {
	Scan(ctx context.Context, exchanges []string) (*contracts.BatchOutcome, error)
	Last() *contracts.BatchOutcome
	Tickers(ctx context.Context, exchanges []string) ([]contracts.Ticker, error)
	Session() contracts.Session
}

// ScanHandler handles scan API endpoints
// ⭐ SSOT: 스캔 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	scanner Scanner
	topN    int
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner Scanner, topN int, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scanner: scanner,
		topN:    topN,
		logger:  log,
	}
}

// Scan runs a scan and returns its report
// POST /api/scan?exchange=NSE,BSE&top=10
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	topN, ok := h.topParam(w, r)
	if !ok {
		return
	}

	out, err := h.scanner.Scan(r.Context(), exchangesParam(r))
	if err != nil {
		if errors.Is(err, universe.ErrUnknownExchange) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusInternalServerError, "Failed to run scan")
		return
	}

	respondJSON(w, http.StatusOK, report.Build(out, topN))
}

// Latest returns the report of the most recent scan
// GET /api/scan/latest?top=10
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	topN, ok := h.topParam(w, r)
	if !ok {
		return
	}

	out := h.scanner.Last()
	if out == nil {
		respondError(w, http.StatusNotFound, "no scan has completed yet")
		return
	}

	respondJSON(w, http.StatusOK, report.Build(out, topN))
}

// Session returns the session a scan would use now
// GET /api/session
func (h *ScanHandler) Session(w http.ResponseWriter, r *http.Request) {
	s := h.scanner.Session()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":  s.Label(),
		"open":  s.Open,
		"close": s.Close,
	})
}

// Universe lists the tickers a scan would cover
// GET /api/universe?exchange=NSE
func (h *ScanHandler) Universe(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.scanner.Tickers(r.Context(), exchangesParam(r))
	if err != nil {
		if errors.Is(err, universe.ErrUnknownExchange) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to resolve universe")
		respondError(w, http.StatusInternalServerError, "Failed to resolve universe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(tickers),
		"tickers": tickers,
	})
}

func (h *ScanHandler) topParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	topStr := r.URL.Query().Get("top")
	if topStr == "" {
		return h.topN, true
	}

	n, err := strconv.Atoi(topStr)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, "top must be a positive integer")
		return 0, false
	}
	return n, true
}
