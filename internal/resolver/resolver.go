// Package resolver adapts the request/response logging pipeline to
// graph-style execution models, where one logical request fans out into many
// per-field resolve calls instead of a single request/response pair.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/auth"
	"github.com/tech-arch1tect/loggate/internal/logging"
	"github.com/tech-arch1tect/loggate/internal/sanitize"
	"github.com/tech-arch1tect/loggate/internal/storage"

	"go.uber.org/zap"
)

// Info describes one resolve call: the field being resolved, its arguments,
// and whatever identity the execution engine carries.
type Info struct {
	Field     string
	Args      map[string]any
	Principal *auth.Principal
}

// ResolveFunc is the call convention intercepted by this adapter.
type ResolveFunc func(ctx context.Context, info Info) (any, error)

// Interceptor wraps resolver chains with the same storage and sanitization
// behavior the HTTP interceptor applies to whole requests.
type Interceptor struct {
	cfg    *config.Config
	san    *sanitize.Sanitizer
	logger *logging.Logger
}

func NewInterceptor(cfg *config.Config, san *sanitize.Sanitizer, logger *logging.Logger) *Interceptor {
	return &Interceptor{
		cfg:    cfg,
		san:    san,
		logger: logger,
	}
}

// Wrap intercepts a resolve call. Storage is re-derived from the ambient
// identity on every call, preserving the correlation id installed by an outer
// transport-level interceptor (or by an earlier resolve in the same chain) so
// all resolves of one logical operation share one id. The call's arguments
// and result are adapted into the body-logging pipeline: results are
// serialized to their JSON wire form and routed through the same
// decode/abridge/mask path as HTTP bodies.
func (i *Interceptor) Wrap(next ResolveFunc) ResolveFunc {
	return func(ctx context.Context, info Info) (any, error) {
		if !i.cfg.MiddlewareEnabled {
			return next(ctx, info)
		}

		store := storage.Derive(ctx,
			principalAccessor(info.Principal, i.cfg.UserIDField),
			principalAccessor(info.Principal, i.cfg.UserDisplayField),
		)
		ctx = storage.WithStorage(ctx, store)

		i.logResolve(ctx, info)
		result, err := next(ctx, info)
		i.logResult(ctx, info, result, err)

		return result, err
	}
}

func principalAccessor(p *auth.Principal, field string) storage.Accessor {
	return func() any {
		return p.Field(field)
	}
}

func (i *Interceptor) logResolve(ctx context.Context, info Info) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Failed to log resolve", zap.Any("panic", r))
		}
	}()

	payload := map[string]any{
		"field": info.Field,
		"args":  i.san.Mask(i.san.Abridge(argsValue(info.Args))),
	}

	fields := append(
		logging.OperationFields(ctx, i.cfg.GoogleCloudProject, true, false),
		zap.Any("request", payload),
		zap.Bool("first_operation", true),
	)
	i.logger.Info(fmt.Sprintf("Resolve %s", info.Field), fields...)
}

func (i *Interceptor) logResult(ctx context.Context, info Info, result any, resolveErr error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Failed to log resolve result", zap.Any("panic", r))
		}
	}()

	payload := map[string]any{
		"field": info.Field,
		"data":  i.serializeResult(result),
	}
	if resolveErr != nil {
		payload["error"] = resolveErr.Error()
	}

	fields := append(
		logging.OperationFields(ctx, i.cfg.GoogleCloudProject, false, true),
		zap.Any("response", payload),
		zap.Bool("last_operation", true),
	)

	msg := fmt.Sprintf("Resolved %s", info.Field)
	if resolveErr == nil {
		i.logger.Info(msg, fields...)
	} else {
		i.logger.Warn(msg, fields...)
	}
}

// serializeResult renders a resolver result as its wire form and reuses the
// body-decoding path, so results are abridged and masked exactly like HTTP
// payloads. Unserializable results degrade to a best-effort string.
func (i *Interceptor) serializeResult(result any) any {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return i.san.Abridge(fmt.Sprintf("%v", result))
	}
	return i.san.DecodeBody("application/json", data)
}

// argsValue converts absent argument maps to nil so the log carries an
// explicit absent marker.
func argsValue(args map[string]any) any {
	if len(args) == 0 {
		return nil
	}
	return args
}
