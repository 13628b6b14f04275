// Provides middleware for standardizing HTTP handlers.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maruel/ksid"

	"github.com/maruel/notion2md/internal/server/dto"
	"github.com/maruel/notion2md/internal/server/ipgeo"
	"github.com/maruel/notion2md/internal/server/ratelimit"
	"github.com/maruel/notion2md/internal/server/reqctx"
)

// wrapDeps holds what every wrapped handler needs besides its own logic.
type wrapDeps struct {
	limits       *ratelimit.Config
	geo          *ipgeo.Checker
	maxBodyBytes int64
	trustProxy   bool
}

// Wrap wraps a handler function to work as an http.Handler accepting only
// method. The function must have signature: func(context.Context, *In) (*Out, error)
// *In must implement dto.Validatable.
//
// The pipeline is: method check, rate limit, body decode, Validate, fn. The
// first failing step writes a JSON error body and ends the request.
func Wrap[In any, PtrIn interface {
	*In
	dto.Validatable
}, Out any](method string, fn func(context.Context, PtrIn) (*Out, error), deps *wrapDeps) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w := &statusWriter{ResponseWriter: rw}
		ctx := addRequestMetadataToContext(r.Context(), r, deps)
		w.Header().Set("X-Request-ID", reqctx.RequestID(ctx).String())
		defer func() { logRequest(ctx, r, w.status, time.Since(start)) }()

		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(ctx, w, dto.MethodNotAllowed(method))
			return
		}
		if !checkRateLimit(ctx, w, r, deps.limits) {
			return
		}

		input := new(In)
		if !readAndDecodeBody(ctx, w, r, input, deps.maxBodyBytes) {
			return
		}
		if err := PtrIn(input).Validate(); err != nil {
			handleValidationError(ctx, w, err)
			return
		}
		output, err := fn(ctx, PtrIn(input))
		writeJSONResponse(ctx, w, output, err)
	})
}

// notFoundHandler answers unknown routes with a JSON 404.
func notFoundHandler(deps *wrapDeps) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w := &statusWriter{ResponseWriter: rw}
		ctx := addRequestMetadataToContext(r.Context(), r, deps)
		w.Header().Set("X-Request-ID", reqctx.RequestID(ctx).String())
		writeError(ctx, w, dto.NotFound(r.URL.Path))
		logRequest(ctx, r, w.status, time.Since(start))
	})
}

// addRequestMetadataToContext adds the request ID, client IP, country and
// User-Agent to the context.
func addRequestMetadataToContext(ctx context.Context, r *http.Request, deps *wrapDeps) context.Context {
	ip := reqctx.GetClientIP(r, deps.trustProxy)
	ctx = reqctx.WithRequestID(ctx, ksid.NewID())
	ctx = reqctx.WithClientIP(ctx, ip)
	ctx = reqctx.WithCountryCode(ctx, deps.geo.CountryCode(ip))
	ctx = reqctx.WithUserAgent(ctx, r.Header.Get("User-Agent"))
	return ctx
}

// checkRateLimit writes the rate limit headers for limited routes and a 429
// when the client is out of tokens. Returns whether the request should proceed.
func checkRateLimit(ctx context.Context, w http.ResponseWriter, r *http.Request, limits *ratelimit.Config) bool {
	result, limited := limits.Check(r, reqctx.ClientIP(ctx))
	if !limited {
		return true
	}
	ratelimit.WriteHeaders(w, result)
	if !result.Allowed {
		writeError(ctx, w, dto.RateLimitExceeded(result.RetryAfterSeconds()))
		return false
	}
	return true
}

// readAndDecodeBody reads the request body with size limit and decodes JSON into input.
// An empty body leaves input zeroed. Returns false if an error occurred and
// was written to the response.
func readAndDecodeBody[In any](ctx context.Context, w http.ResponseWriter, r *http.Request, input *In, maxBytes int64) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		if maxBytesErr := checkMaxBytesError(err); maxBytesErr != nil {
			writeError(ctx, w, dto.PayloadTooLarge(maxBytesErr.Limit))
			return false
		}
		writeError(ctx, w, dto.BadRequest("Failed to read request body").Wrap(err))
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if err := json.Unmarshal(body, input); err != nil {
		writeError(ctx, w, dto.NewAPIError(http.StatusBadRequest, dto.ErrorCodeInvalidFormat, dto.MsgInvalidBody).Wrap(err))
		return false
	}
	return true
}

func checkMaxBytesError(err error) *http.MaxBytesError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return maxBytesErr
	}
	return nil
}

// handleValidationError handles a validation error from a request's Validate method.
func handleValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	var ewsErr dto.ErrorWithStatus
	if !errors.As(err, &ewsErr) {
		err = dto.BadRequest(err.Error()).Wrap(err)
	}
	writeError(ctx, w, err)
}

// writeJSONResponse writes a JSON response or error response.
func writeJSONResponse[Out any](ctx context.Context, w http.ResponseWriter, output *Out, err error) {
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(output); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "err", err)
	}
}

// writeError maps err to a status code and JSON error body. Only the client
// facing message is sent; the full error chain goes to the log.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := dto.ErrorResponse{Message: "Internal server error", Code: dto.ErrorCodeInternal}
	statusCode := http.StatusInternalServerError
	var ewsErr dto.ErrorWithStatus
	if errors.As(err, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		resp = dto.ErrorResponse{Message: ewsErr.Message(), Code: ewsErr.Code(), Details: ewsErr.Details()}
	}
	if len(resp.Details) == 0 {
		resp.Details = nil
	}

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "Handler error", "err", err, "statusCode", statusCode, "code", resp.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "Failed to encode error response", "err", err)
	}
}

func logRequest(ctx context.Context, r *http.Request, status int, d time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	args := append(reqctx.LogAttrs(ctx), "method", r.Method, "path", r.URL.Path, "status", status, "dur", d.Round(time.Millisecond))
	slog.InfoContext(ctx, "http", args...)
}

// statusWriter records the status code sent to the client.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
