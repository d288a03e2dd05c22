package requestlog

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/auth"
	"github.com/tech-arch1tect/loggate/internal/logging"
	"github.com/tech-arch1tect/loggate/internal/sanitize"
	"github.com/tech-arch1tect/loggate/internal/storage"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// internalPrefix marks paths reserved for infrastructure endpoints that are
// never request-logged.
const internalPrefix = "/__"

// Interceptor logs every request and response pair with sanitized payloads
// and installs the per-request storage that ties the two events (and any
// application logs in between) to one correlation id.
type Interceptor struct {
	cfg      *config.Config
	san      *sanitize.Sanitizer
	logger   *logging.Logger
	excluded map[string]struct{}
}

func NewInterceptor(cfg *config.Config, san *sanitize.Sanitizer, logger *logging.Logger) *Interceptor {
	excluded := make(map[string]struct{}, len(cfg.ExcludedEndpoints))
	for _, path := range cfg.ExcludedEndpoints {
		excluded[path] = struct{}{}
	}
	return &Interceptor{
		cfg:      cfg,
		san:      san,
		logger:   logger,
		excluded: excluded,
	}
}

// Middleware returns the echo middleware. Disabled or ignored requests pass
// straight through to the handler with no storage write and no log events.
// Faults while assembling or emitting either event are contained and logged
// as errors; they never affect the request outcome.
func (i *Interceptor) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !i.cfg.MiddlewareEnabled {
				return next(c)
			}
			if i.isIgnored(c.Request().URL.Path) {
				return next(c)
			}

			store := storage.New(
				userAccessor(c, i.cfg.UserIDField),
				userAccessor(c, i.cfg.UserDisplayField),
			)
			if trace, span, sampled, ok := parseCloudTraceContext(c.Request().Header.Get(cloudTraceHeader)); ok {
				store.TraceID, store.SpanID, store.TraceSampled = trace, span, sampled
			}
			c.SetRequest(c.Request().WithContext(storage.WithStorage(c.Request().Context(), store)))

			body := readBody(c)
			i.logRequest(c, body)

			recorder := newBodyRecorder(c.Response().Writer)
			c.Response().Writer = recorder

			err := next(c)

			i.logResponse(c, recorder, err)
			return err
		}
	}
}

func (i *Interceptor) isIgnored(path string) bool {
	if strings.HasPrefix(path, internalPrefix) {
		return true
	}
	_, ok := i.excluded[path]
	return ok
}

// userAccessor defers the identity lookup until a log consumer evaluates it.
// The principal may be attached by middleware running after this one, so the
// request context is re-read on every call.
func userAccessor(c echo.Context, field string) storage.Accessor {
	return func() any {
		return auth.PrincipalFromContext(c.Request().Context()).Field(field)
	}
}

// readBody drains the request body for logging and replaces it with a fresh
// reader so the handler sees the original stream.
func readBody(c echo.Context) []byte {
	req := c.Request()
	if req.Body == nil {
		return nil
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		req.Body = io.NopCloser(bytes.NewReader(nil))
		return nil
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func (i *Interceptor) logRequest(c echo.Context, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Failed to log request", zap.Any("panic", r))
		}
	}()

	req := c.Request()
	contentType := req.Header.Get(echo.HeaderContentType)

	payload := map[string]any{
		"body":         emptyNone(i.san.DecodeBody(contentType, body)),
		"query_params": emptyNone(flattenValues(c.QueryParams())),
		"content_type": emptyNone(contentType),
		"method":       emptyNone(req.Method),
		"path":         emptyNone(req.URL.Path),
		"headers":      emptyNone(i.san.ExcludeKeys(flattenValues(req.Header))),
	}

	fields := append(
		logging.OperationFields(req.Context(), i.cfg.GoogleCloudProject, true, false),
		zap.Any("request", payload),
		zap.Bool("first_operation", true),
	)
	i.logger.Info(fmt.Sprintf("Request %s %s", req.Method, req.URL.Path), fields...)
}

func (i *Interceptor) logResponse(c echo.Context, recorder *bodyRecorder, handlerErr error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Failed to log response", zap.Any("panic", r))
		}
	}()

	req := c.Request()
	status := c.Response().Status
	if handlerErr != nil && !c.Response().Committed {
		if he, ok := handlerErr.(*echo.HTTPError); ok {
			status = he.Code
		} else {
			status = http.StatusInternalServerError
		}
	}

	contentType := c.Response().Header().Get(echo.HeaderContentType)
	payload := map[string]any{
		"headers":     emptyNone(i.san.ExcludeKeys(flattenValues(c.Response().Header()))),
		"data":        emptyNone(i.san.DecodeBody(contentType, recorder.Body())),
		"status_code": status,
	}

	fields := append(
		logging.OperationFields(req.Context(), i.cfg.GoogleCloudProject, false, true),
		zap.Any("response", payload),
		zap.Bool("last_operation", true),
	)

	msg := fmt.Sprintf("Response %s %s > %d", req.Method, req.URL.Path, status)
	if status >= 200 && status < 300 {
		i.logger.Info(msg, fields...)
	} else {
		i.logger.Warn(msg, fields...)
	}
}

// flattenValues converts a multi-valued header/query mapping into the flat
// string mapping the sanitizer operates on.
func flattenValues[M ~map[string][]string](values M) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// emptyNone normalizes empty values to an explicit nil so logged payloads
// carry "absent" rather than an empty string or mapping.
func emptyNone(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil
		}
	}
	return v
}
