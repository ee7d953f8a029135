// Package api - Thin HTTP layer over the analysis runner
// The API is ONLY responsible for input ingestion and output serialization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"synergism-calc/adapters/savefile"
	"synergism-calc/adapters/storage"
	"synergism-calc/core/analysis"
	"synergism-calc/core/pricing"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/config"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	version string
	cfg     config.ServerConfig
	clock   clock.Clock
	store   storage.Store
	limiter *clientLimiter
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock used when a request does not fix the time
func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithStore keeps analyzed reports and serves the /reports endpoints
func WithStore(store storage.Store) Option {
	return func(s *Server) { s.store = store }
}

// NewServer creates a new API server
func NewServer(version string, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		version: version,
		cfg:     cfg,
		clock:   clock.Real{},
		limiter: newClientLimiter(cfg.RequestsPerMinute, cfg.RequestBurst),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /analyze", s.limited(s.handleAnalyze))
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	if s.store != nil {
		s.mux.HandleFunc("GET /reports", s.handleListReports)
		s.mux.HandleFunc("GET /reports/{id}", s.handleGetReport)
		s.mux.HandleFunc("DELETE /reports/{id}", s.handleDeleteReport)
		s.mux.HandleFunc("GET /reports/{id}/compare/{other}", s.handleCompareReports)
	}
}

// handleAnalyze handles POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := s.clock.Now()
	requestID := uuid.NewString()

	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var req AnalyzeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, requestID, errors.Newf(errors.TypeInput, "request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, requestID, errors.Parsing("invalid request body", err), http.StatusBadRequest)
		return
	}

	in, err := s.inputs(&req)
	if err != nil {
		s.writeError(w, requestID, err, statusOf(err))
		return
	}

	var clk clock.Clock = s.clock
	if req.At != nil {
		clk = clock.Fixed{At: *req.At}
	}

	res, err := analysis.Run(in, analysis.Options{Clock: clk})
	if err != nil {
		s.writeError(w, requestID, err, statusOf(err))
		return
	}

	resp := &AnalyzeResponse{RequestID: requestID, Report: res.Report}
	if req.Record {
		if s.store == nil {
			s.writeError(w, requestID, errors.Input("this server keeps no report history"), http.StatusBadRequest)
			return
		}
		rec := &storage.Record{Profile: req.Profile, Report: res.Report}
		if err := s.store.Save(r.Context(), rec); err != nil {
			s.writeError(w, requestID, err, statusOf(err))
			return
		}
		resp.Profile = rec.Profile
	}

	logging.Info("analyze request served",
		zap.String("request_id", requestID),
		zap.Stringer("stage", res.Report.Stage),
		zap.Bool("recorded", req.Record))

	resp.DurationMs = s.clock.Now().Sub(start).Milliseconds()
	s.writeJSON(w, resp, http.StatusOK)
}

func (s *Server) inputs(req *AnalyzeRequest) (analysis.Inputs, error) {
	raw := bytes.TrimSpace(req.Save)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return analysis.Inputs{}, errors.Input("save is required")
	}

	// A JSON string holds a base64 export; anything else is the document itself.
	if raw[0] == '"' {
		var export string
		if err := json.Unmarshal(raw, &export); err != nil {
			return analysis.Inputs{}, errors.Parsing("invalid save string", err)
		}
		raw = []byte(export)
	}
	d, err := savefile.Parse(raw)
	if err != nil {
		return analysis.Inputs{}, err
	}

	in := analysis.Inputs{Save: d, Settings: req.Settings}
	if in.Settings != nil {
		if err := in.Settings.Validate(); err != nil {
			return analysis.Inputs{}, err
		}
	}
	if len(req.Prices) > 0 {
		tables := make([]*pricing.Table, len(req.Prices))
		for i, t := range req.Prices {
			tables[i] = pricing.NewTable(t.Category, t.Columns, t.Rows)
		}
		in.Prices = pricing.NewCatalog(tables...)
		if err := in.Prices.Validate(); err != nil {
			return analysis.Inputs{}, err
		}
	}
	return in, nil
}

// handleListReports handles GET /reports?profile=&limit=&offset=
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	q := r.URL.Query()

	filter := &storage.ListFilter{Profile: q.Get("profile"), Limit: 50}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, requestID, errors.Newf(errors.TypeInput, "invalid %s %q", name, v), http.StatusBadRequest)
			return
		}
		*dst = n
	}

	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, requestID, err, statusOf(err))
		return
	}
	resp := &ListReportsResponse{Reports: make([]storage.Summary, len(records))}
	for i, rec := range records {
		resp.Reports[i] = rec.Summary()
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleGetReport handles GET /reports/{id}
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, uuid.NewString(), err, statusOf(err))
		return
	}
	s.writeJSON(w, rec, http.StatusOK)
}

// handleDeleteReport handles DELETE /reports/{id}
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, uuid.NewString(), err, statusOf(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompareReports handles GET /reports/{id}/compare/{other}
func (s *Server) handleCompareReports(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Compare(r.Context(), r.PathValue("id"), r.PathValue("other"))
	if err != nil {
		s.writeError(w, uuid.NewString(), err, statusOf(err))
		return
	}
	s.writeJSON(w, c, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    s.clock.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "synergism-calc",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn("cannot write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, err error, status int) {
	body := ErrorBody{RequestID: requestID, Code: string(errors.TypeInternal), Message: err.Error()}
	var e *errors.Error
	if stderrors.As(err, &e) {
		body.Code = string(e.Type)
		body.Context = e.Context
	}

	if status >= http.StatusInternalServerError {
		logging.Error("request failed", zap.String("request_id", requestID), zap.Error(err))
	} else {
		logging.Debug("request rejected", zap.String("request_id", requestID), zap.Error(err))
	}
	s.writeJSON(w, &ErrorResponse{Error: body}, status)
}

func statusOf(err error) int {
	switch {
	case errors.IsType(err, errors.TypeInput),
		errors.IsType(err, errors.TypeParsing),
		errors.IsType(err, errors.TypeConfig):
		return http.StatusBadRequest
	case errors.IsType(err, errors.TypeNotFound):
		return http.StatusNotFound
	case errors.IsType(err, errors.TypeRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logging.Info("api listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
