package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	gomponents "maragu.dev/gomponents"

	"affiliateScope/internal/query"
	"affiliateScope/internal/render"
	"affiliateScope/internal/storage"
)

const (
	alertMissingAddress = "Please enter a wallet address"
	alertInvalidAddress = "Please enter a valid wallet address"
)

// Runner executes one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, wallet string) (render.DisplayModel, error)
}

// Server is the dashboard: one wallet input, one fetch trigger and one
// shared output region.
type Server struct {
	runner Runner
	region *storage.MemoryRegion
	logger *zap.Logger
}

func New(runner Runner, region *storage.MemoryRegion, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runner: runner, region: region, logger: logger}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.home)
	r.Post("/fetch", s.fetch)
	r.Get("/region", s.regionFragment)
	r.Get("/api/stats", s.stats)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	view, _ := s.region.Current()
	renderHTML(w, http.StatusOK, dashboardPage("", "", view))
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	wallet := r.PostFormValue("wallet")

	_, err := s.runner.Run(r.Context(), wallet)
	if alert := addressAlert(err); alert != "" {
		view, _ := s.region.Current()
		renderHTML(w, http.StatusBadRequest, dashboardPage(wallet, alert, view))
		return
	}
	if err != nil {
		s.logger.Warn("fetch failed", zap.Error(err))
	}

	// Overlapping fetches share the region, so show whatever was written last.
	view, _ := s.region.Current()
	renderHTML(w, http.StatusOK, dashboardPage(wallet, "", view))
}

func (s *Server) regionFragment(w http.ResponseWriter, _ *http.Request) {
	view, _ := s.region.Current()
	renderHTML(w, http.StatusOK, render.Node(view))
}

// statsResponse carries metrics for a table view and message otherwise.
type statsResponse struct {
	Metrics []render.Metric `json:"metrics,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func newStatsResponse(view render.DisplayModel, err error) statsResponse {
	out := statsResponse{Metrics: view.Metrics, Message: view.Message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")

	view, err := s.runner.Run(r.Context(), wallet)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newStatsResponse(view, nil))
	case addressAlert(err) != "":
		writeJSON(w, http.StatusBadRequest, statsResponse{Error: err.Error()})
	default:
		s.logger.Warn("stats failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, newStatsResponse(view, err))
	}
}

func addressAlert(err error) string {
	switch {
	case errors.Is(err, query.ErrMissingAddress):
		return alertMissingAddress
	case errors.Is(err, query.ErrInvalidAddress):
		return alertInvalidAddress
	default:
		return ""
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
