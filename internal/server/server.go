package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/risk-ladder/internal/config"
	"github.com/iwvelando/risk-ladder/internal/ladder"
	"github.com/iwvelando/risk-ladder/internal/metrics"
	"github.com/iwvelando/risk-ladder/internal/optimizer"
	"github.com/iwvelando/risk-ladder/internal/planner"
	"github.com/iwvelando/risk-ladder/internal/zone"
	"github.com/iwvelando/risk-ladder/pkg/constants"
	"github.com/iwvelando/risk-ladder/pkg/output"
	"github.com/iwvelando/risk-ladder/pkg/validation"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// Options configures the HTTP handler.
type Options struct {
	MaxUploadSize  int64
	RequestTimeout time.Duration
	Version        string
	// Metrics, when set, observes every search and is served on /metrics.
	Metrics *metrics.Collector
}

type handler struct {
	logger         *zap.Logger
	maxUploadSize  int64
	requestTimeout time.Duration
	version        string
	metrics        *metrics.Collector
}

// NewHandler constructs the HTTP handler that serves the ladder API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		maxUploadSize:  opts.MaxUploadSize,
		requestTimeout: opts.RequestTimeout,
		version:        trimmedVersion,
		metrics:        opts.Metrics,
	}

	mux := http.NewServeMux()

	// JSON endpoints, one per run mode
	mux.HandleFunc("/api/ladder", h.handleMode(constants.RunModeLadder))
	mux.HandleFunc("/api/optimize", h.handleMode(constants.RunModeOptimize))
	mux.HandleFunc("/api/bound", h.handleMode(constants.RunModeBound))
	mux.HandleFunc("/api/stop", h.handleMode(constants.RunModeStop))

	// Full YAML configuration upload
	mux.HandleFunc("/api/run", h.handleRun)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})

	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}

	return withRequestID(mux)
}

// withRequestID tags every request with an ID, reusing the caller's when present.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// planRequest is the JSON body accepted by the per-mode endpoints. Field
// names match the YAML configuration.
type planRequest struct {
	Risk         config.RiskSettings   `json:"risk"`
	Zone         zone.PriceZone        `json:"zone"`
	Search       config.SearchConfig   `json:"search"`
	Bound        config.BoundConfig    `json:"bound"`
	Margin       config.MarginConfig   `json:"margin"`
	StopScan     config.StopScanConfig `json:"stopScan"`
	CurrentPrice float64               `json:"currentPrice"`
	Format       string                `json:"format"`
}

func (p planRequest) configuration() config.Configuration {
	conf := config.Configuration{
		Output:       config.OutputConfig{Format: p.Format},
		Risk:         p.Risk,
		Zone:         p.Zone,
		Search:       p.Search,
		Bound:        p.Bound,
		Margin:       p.Margin,
		StopScan:     p.StopScan,
		CurrentPrice: p.CurrentPrice,
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatJSON
	}
	conf.Normalize()
	return conf
}

type planResponse struct {
	RequestID string         `json:"requestId"`
	Report    *output.Report `json:"report"`
	Duration  string         `json:"duration"`
}

func (h *handler) handleMode(mode string) http.HandlerFunc {
	op := "server.handle" + strings.ToUpper(mode[:1]) + mode[1:]
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

		var req planRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
				return
			}
			h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
			return
		}

		h.runPlan(w, r, req.configuration(), mode, start, op)
	}
}

func (h *handler) handleRun(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRun"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	conf.Output.Format = constants.OutputFormatJSON
	if format := strings.TrimSpace(r.FormValue("format")); format != "" {
		conf.Output.Format = format
	}

	mode := strings.ToLower(strings.TrimSpace(r.FormValue("mode")))
	if mode == "" {
		mode = constants.RunModeOptimize
	}

	h.runPlan(w, r, *conf, mode, start, op)
}

func (h *handler) runPlan(w http.ResponseWriter, r *http.Request, conf config.Configuration, mode string, start time.Time, op string) {
	format := strings.ToLower(strings.TrimSpace(conf.Output.Format))
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var observer optimizer.Observer
	if h.metrics != nil {
		observer = h.metrics
	}

	logger := h.logger.With(zap.String("request_id", requestID(r.Context())))
	report, err := planner.Plan(ctx, logger, conf, mode, observer)
	if err != nil {
		h.respondErrorWithOp(w, r, statusFor(err), err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	logger.Info("ladder request served",
		zap.String("op", op),
		zap.String("mode", mode),
		zap.Int("rungs", len(report.Ladder)),
		zap.Duration("duration", elapsed),
	)

	if format != constants.OutputFormatJSON {
		h.writeFormatted(w, format, *report)
		return
	}

	h.writeJSON(w, http.StatusOK, planResponse{
		RequestID: requestID(r.Context()),
		Report:    report,
		Duration:  elapsed.String(),
	})
}

// statusFor maps planning errors to HTTP status codes. Inputs that are well
// formed but yield no ladder are unprocessable rather than bad requests.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, optimizer.ErrNoOptimumFound),
		errors.Is(err, ladder.ErrDegenerateZone),
		errors.Is(err, zone.ErrNoBracket):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version":   h.version,
		"requestId": requestID(r.Context()),
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	id := requestID(r.Context())
	h.logger.Error("ladder request failed",
		zap.String("op", op),
		zap.String("request_id", id),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg, "requestId": id})
}

func (h *handler) writeFormatted(w http.ResponseWriter, format string, report output.Report) {
	var buf bytes.Buffer
	if err := output.Write(&buf, format, report); err != nil {
		h.logger.Error("failed to format report", zap.String("format", format), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	switch format {
	case constants.OutputFormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case constants.OutputFormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
