package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dataextract/internal/domain"
	"github.com/kailas-cloud/dataextract/internal/domain/field"
	logpkg "github.com/kailas-cloud/dataextract/internal/logger"
	"github.com/kailas-cloud/dataextract/internal/usecase/collector"
	healthuc "github.com/kailas-cloud/dataextract/internal/usecase/health"
)

const (
	defaultMaxBatchSize = 500
	defaultMaxBodyBytes = 4 << 20
)

// ErrorCode is the machine-readable error kind returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeNotObject        ErrorCode = "not_object"
	ErrorCodeClassNotFound    ErrorCode = "class_not_found"
	ErrorCodeBatchTooLarge    ErrorCode = "batch_too_large"
	ErrorCodeCacheUnavailable ErrorCode = "cache_unavailable"
	ErrorCodeQuotaExceeded    ErrorCode = "embedding_quota_exceeded"
	ErrorCodeEmbeddingFailed  ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// FieldsResponse lists available field names.
type FieldsResponse struct {
	Fields []string `json:"fields"`
}

// CatalogRecord is one catalog entry as served over HTTP.
type CatalogRecord struct {
	Field     string `json:"field"`
	Type      string `json:"type"`
	Class     string `json:"class,omitempty"`
	Getter    string `json:"getter,omitempty"`
	Partition string `json:"partition"`
}

// CatalogResponse is the full field catalog.
type CatalogResponse struct {
	Records []CatalogRecord `json:"records"`
}

// ExtractResponse carries extracted values, nested by namespace.
type ExtractResponse struct {
	Class   string         `json:"class"`
	PassID  string         `json:"pass_id,omitempty"`
	Objects int            `json:"objects"`
	Data    map[string]any `json:"data"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the extraction API.
type Server struct {
	dict    Dictionary
	cache   CatalogCache
	classes Classes
	health  HealthChecker
	logger  *zap.Logger

	extractions  *prometheus.CounterVec
	maxBatchSize int
	maxBodyBytes int64

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	dict Dictionary,
	cache CatalogCache,
	classes Classes,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		dict:         dict,
		cache:        cache,
		classes:      classes,
		health:       health,
		logger:       logger,
		maxBatchSize: defaultMaxBatchSize,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotObject, http.StatusBadRequest, ErrorCodeNotObject),
		sentinelHandler(domain.ErrUnknownClass, http.StatusNotFound, ErrorCodeClassNotFound),
		sentinelHandler(domain.ErrCacheMiss, http.StatusServiceUnavailable, ErrorCodeCacheUnavailable),
		sentinelHandler(domain.ErrCacheCorrupt, http.StatusServiceUnavailable, ErrorCodeCacheUnavailable),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, ErrorCodeQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingFailed),
	}
	return s
}

// WithLimits overrides the batch size and request body limits. Zero keeps the default.
func (s *Server) WithLimits(maxBatchSize int, maxBodyBytes int64) *Server {
	if maxBatchSize > 0 {
		s.maxBatchSize = maxBatchSize
	}
	if maxBodyBytes > 0 {
		s.maxBodyBytes = maxBodyBytes
	}
	return s
}

// WithMetrics attaches the extraction counter passed to every collector.
func (s *Server) WithMetrics(extractions *prometheus.CounterVec) *Server {
	s.extractions = extractions
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fields", s.ListFields)
		r.Get("/catalog", s.GetCatalog)
		r.Post("/extract/{class}", s.ExtractObject)
		r.Post("/extract/{class}/batch", s.ExtractBatch)
		r.Post("/cache/warmup", s.WarmUpCache)
		r.Delete("/cache", s.ClearCache)
	})
}

// ListFields handles GET /api/v1/fields.
func (s *Server) ListFields(w http.ResponseWriter, r *http.Request) {
	types, ok := s.bindTypes(w, r)
	if !ok {
		return
	}

	names, err := s.dict.AvailableFields(r.Context(), types...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Fields: names})
}

// GetCatalog handles GET /api/v1/catalog.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := s.dict.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	records := make([]CatalogRecord, 0, len(c.Persisted)+len(c.Ephemeral))
	for _, f := range c.Persisted {
		records = append(records, catalogRecord(f, "persisted"))
	}
	for _, f := range c.Ephemeral {
		records = append(records, catalogRecord(f, "ephemeral"))
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Records: records})
}

// ExtractObject handles POST /api/v1/extract/{class}.
func (s *Server) ExtractObject(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	types, ok := s.bindTypes(w, r)
	if !ok {
		return
	}
	ignoreNull, ok := bindIgnoreNull(w, r)
	if !ok {
		return
	}

	obj, err := s.classes.New(class)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(obj); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	data, err := s.collector(r, class).ForSingleObject(r.Context(), obj, ignoreNull, types...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{Class: class, Objects: 1, Data: data})
}

// ExtractBatch handles POST /api/v1/extract/{class}/batch. All objects go
// through one pass, so later objects override earlier ones per field.
func (s *Server) ExtractBatch(w http.ResponseWriter, r *http.Request) {
	class := chi.URLParam(r, "class")
	types, ok := s.bindTypes(w, r)
	if !ok {
		return
	}
	ignoreNull, ok := bindIgnoreNull(w, r)
	if !ok {
		return
	}

	var items []json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(items) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorCodeBatchTooLarge, "batch exceeds maximum size")
		return
	}

	objects := make([]any, 0, len(items))
	for _, raw := range items {
		obj, err := s.classes.New(class)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		if err := json.Unmarshal(raw, obj); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid batch item: "+err.Error())
			return
		}
		objects = append(objects, obj)
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	c := s.collector(r, class)
	for _, obj := range objects {
		if err := c.PushObject(ctx, obj, ignoreNull); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	data, err := c.Collected(types...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, ExtractResponse{
		Class:   class,
		PassID:  c.PassID(),
		Objects: len(objects),
		Data:    data,
	})
}

// WarmUpCache handles POST /api/v1/cache/warmup.
func (s *Server) WarmUpCache(w http.ResponseWriter, r *http.Request) {
	if err := s.dict.WarmUp(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	names, err := s.dict.AvailableFields(r.Context(), field.Types()...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Fields: names})
}

// ClearCache handles DELETE /api/v1/cache.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.ClearCache(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	for name, err := range report.Errors {
		s.logger.Warn("health check failed", zap.String("component", name), zap.Error(err))
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) collector(r *http.Request, class string) *collector.Collector {
	ctx := logpkg.WithFields(r.Context(), zap.String("class", class))
	return collector.New(s.dict, s.classes, logpkg.FromContext(ctx)).WithMetrics(s.extractions)
}

// bindTypes reads the optional form-style "types" list, e.g. types=float,string.
func (s *Server) bindTypes(w http.ResponseWriter, r *http.Request) ([]field.Type, bool) {
	var raw []string
	if err := runtime.BindQueryParameter("form", false, false, "types", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter types: "+err.Error())
		return nil, false
	}
	types, err := field.ParseTypes(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return types, true
}

// bindIgnoreNull reads the optional "ignore_null" flag; it defaults to true.
func bindIgnoreNull(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var v *bool
	if err := runtime.BindQueryParameter("form", true, false, "ignore_null", r.URL.Query(), &v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter ignore_null: "+err.Error())
		return false, false
	}
	if v == nil {
		return true, true
	}
	return *v, true
}

func catalogRecord(f field.Field, partition string) CatalogRecord {
	return CatalogRecord{
		Field:     f.Name(),
		Type:      string(f.Type()),
		Class:     f.Class(),
		Getter:    f.Getter(),
		Partition: partition,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if !usage.Embedded() {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens))
	w.Header().Set("X-Embedded-Objects", strconv.Itoa(usage.Objects))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrNotObject,
		domain.ErrUnknownClass,
		domain.ErrCacheMiss,
		domain.ErrCacheCorrupt,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !domain.IsValidation(err) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
