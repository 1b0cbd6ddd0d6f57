package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/relval/internal/modules/screener"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ScreenResponse wraps the latest screen results.
type ScreenResponse struct {
	Count      int         `json:"count"`
	Securities interface{} `json:"securities"`
}

// TradesResponse wraps the trade log contents.
type TradesResponse struct {
	Count  int         `json:"count"`
	Trades interface{} `json:"trades"`
}

// SystemResponse reports host resource usage.
type SystemResponse struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status: "ok",
		Time:   time.Now().Format(time.RFC3339),
	})
}

// handleScreen serves the most recent screen results file. A missing file
// means no screen has run yet and yields an empty list.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	securities, err := screener.ReadScreen(s.cfg.ScreenFile)
	if errors.Is(err, os.ErrNotExist) {
		securities, err = nil, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", s.cfg.ScreenFile).Msg("Failed to read screen results")
		http.Error(w, "failed to read screen results", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, ScreenResponse{Count: len(securities), Securities: securities})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.tradeLog.ReadAll()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read trade log")
		http.Error(w, "failed to read trade log", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, TradesResponse{Count: len(trades), Trades: trades})
}

// handleSystem reports host stats. The short sampling interval keeps the
// endpoint responsive for dashboard polling.
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}
	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	ramPercent := 0.0
	if memStat, err := mem.VirtualMemory(); err == nil {
		ramPercent = memStat.UsedPercent
	} else {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	s.writeJSON(w, SystemResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		CPUPercent:    cpuAvg,
		RAMPercent:    ramPercent,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
