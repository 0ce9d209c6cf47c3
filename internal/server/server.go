// Package server exposes the dashboard over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Stormmysea/stock-website/internal/dashboard"
	"github.com/Stormmysea/stock-website/internal/render"
	"github.com/Stormmysea/stock-website/internal/search"
	"github.com/Stormmysea/stock-website/internal/terminal"
)

// Server serves the dashboard page and its JSON API.
type Server struct {
	Holder  *dashboard.Holder
	Console *terminal.Console
	Index   *search.Index
	// Refresh triggers an out-of-schedule refresh; nil disables POST /api/refresh.
	Refresh func(ctx context.Context) error

	addr string
	srv  *http.Server
}

// New creates a server listening on addr.
func New(addr string, holder *dashboard.Holder, console *terminal.Console, index *search.Index, refresh func(ctx context.Context) error) *Server {
	return &Server{
		Holder:  holder,
		Console: console,
		Index:   index,
		Refresh: refresh,
		addr:    addr,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.withState(func(w http.ResponseWriter, r *http.Request, st *dashboard.State) {
		writeJSON(w, http.StatusOK, st)
	}))
	mux.HandleFunc("GET /api/quotes", s.withState(func(w http.ResponseWriter, r *http.Request, st *dashboard.State) {
		writeJSON(w, http.StatusOK, st.Quotes)
	}))
	mux.HandleFunc("GET /api/quotes/{symbol}", s.withState(s.handleQuote))
	mux.HandleFunc("GET /api/candles", s.withState(s.handleCandles))
	mux.HandleFunc("GET /api/news", s.withState(func(w http.ResponseWriter, r *http.Request, st *dashboard.State) {
		writeJSON(w, http.StatusOK, st.News)
	}))
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/terminal", s.handleHistory)
	mux.HandleFunc("POST /api/terminal", s.handleCommand)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] http server listening on %s", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

type stateHandler func(w http.ResponseWriter, r *http.Request, st *dashboard.State)

// withState answers 503 until the first refresh has been published.
func (s *Server) withState(h stateHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.Holder.Load()
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "dashboard not loaded yet")
			return
		}
		h(w, r, st)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.Holder.Load()
	if st == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Loading market data...\n"))
		return
	}
	var buf bytes.Buffer
	if err := render.HTML(&buf, st); err != nil {
		log.Printf("[ERROR] render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok", "loaded": false}
	if st := s.Holder.Load(); st != nil {
		resp["loaded"] = true
		resp["updated_at"] = st.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, st *dashboard.State) {
	symbol := r.PathValue("symbol")
	q, ok := st.Quote(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request, st *dashboard.State) {
	candles := st.Candles
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n < len(candles) {
			candles = candles[len(candles)-n:]
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  st.Chart.Ticker,
		"source":  st.Chart.Source,
		"summary": st.Chart,
		"candles": candles,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": s.Index.Filter(q),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"lines": s.Console.History()})
}

type commandRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res := s.Console.Run(req.Command)
	if res.Lines == nil {
		res.Lines = []terminal.Line{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.Refresh == nil {
		writeError(w, http.StatusNotImplemented, "refresh disabled")
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		log.Printf("[ERROR] manual refresh: %v", err)
		writeError(w, http.StatusServiceUnavailable, "refresh failed: "+err.Error())
		return
	}
	st := s.Holder.Load()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard not loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// HolderQuotes adapts a Holder to the console's quote lookup.
func HolderQuotes(h *dashboard.Holder) func() terminal.QuoteSource {
	return func() terminal.QuoteSource {
		if st := h.Load(); st != nil {
			return st
		}
		return nil
	}
}
