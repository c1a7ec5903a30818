package errorx

import (
	"encoding/json"
	"errors"
	"runtime"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// detailer is implemented by errors that carry structured context for the client
type detailer interface {
	ErrorDetails() map[string]any
}

// ErrorHandler provides unified error handling capabilities
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError converts any error to APIError and writes the JSON response
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := h.ConvertToAPIError(err)
	apiErr.TraceID = ExtractTraceID(c)
	apiErr.Timestamp = time.Now().UTC().Format(time.RFC3339)
	translate(c, apiErr)

	h.logError(c, apiErr, err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"error": apiErr,
	})
}

// ConvertToAPIError converts any error to APIError.
// Domain sentinels are matched with errors.Is; details from the error chain are merged in.
func (h *ErrorHandler) ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.clone()
	}

	var out *APIError
	switch {
	case errors.Is(err, cnst.ErrInvalidStatus):
		out = InvalidStatus("status", nil, "")
	case errors.Is(err, cnst.ErrInvalidInput):
		var fe *FieldError
		if errors.As(err, &fe) && fe.Reason == ReasonRequired {
			out = MissingField(fe.Field)
		} else {
			out = InvalidInput("", "")
		}
	case errors.Is(err, cnst.ErrAuthenticationRequired):
		out = Unauthorized()
	case errors.Is(err, cnst.ErrInvalidToken), errors.Is(err, cnst.ErrInvalidRefreshToken):
		out = InvalidToken()
	case errors.Is(err, cnst.ErrInvalidCredentials):
		out = InvalidCredentials()
	case errors.Is(err, cnst.ErrUserDisabled):
		out = UserDisabled()
	case errors.Is(err, cnst.ErrForbidden):
		out = Forbidden("")
	case errors.Is(err, cnst.ErrNotFound):
		out = NotFound("resource")
	case errors.Is(err, cnst.ErrAlreadyApproved):
		out = AlreadyApproved()
	case errors.Is(err, cnst.ErrConcurrentUpdate):
		out = ConcurrentModification()
	case errors.Is(err, cnst.ErrConflict):
		out = Conflict("resource", "")
	default:
		return Internal()
	}

	mergeDetails(out, err)
	return out
}

// mergeDetails copies details from every detailer in the chain onto apiErr
func mergeDetails(apiErr *APIError, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if d, ok := e.(detailer); ok {
			for k, v := range d.ErrorDetails() {
				apiErr.WithDetail(k, v)
			}
		}
	}
}

// logError logs the error with appropriate context and stack trace
func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("trace_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("category", string(apiErr.Category)),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}

	if originalErr != nil && originalErr.Error() != apiErr.Message {
		fields = append(fields, zap.Error(originalErr))
	}

	if len(apiErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(apiErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	if apiErr.Severity == SeverityCritical {
		buf := make([]byte, 1024*4)
		n := runtime.Stack(buf, false)
		fields = append(fields, zap.String("stack_trace", string(buf[:n])))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// ErrorMiddleware renders the last error a handler attached with c.Error
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			h.HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware returns a gin middleware for panic recovery
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		h.HandleError(c, Panic(err))
	})
}

// NoRoute answers requests for unknown endpoints
func (h *ErrorHandler) NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.HandleError(c, EndpointNotFound(c.Request.URL.Path))
	}
}

// ExtractTraceID returns the request's trace id.
// The active span's trace id wins, then X-Trace-Id, then a new uuid.
func ExtractTraceID(c *gin.Context) string {
	if traceID := c.GetString(cnst.CtxKeyTraceID); traceID != "" {
		return traceID
	}

	traceID := ""
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	} else if h := c.GetHeader("X-Trace-Id"); h != "" {
		traceID = h
	} else {
		traceID = uuid.New().String()
	}
	c.Set(cnst.CtxKeyTraceID, traceID)
	return traceID
}
