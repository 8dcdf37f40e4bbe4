package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/rrazong/leaderz-backend/internal/metrics"
)

// TournamentScoped is implemented by request messages that address one
// tournament by its public key.
type TournamentScoped interface {
	TournamentRef() string
}

// rpcAttrs collects the attributes logged for every call: the procedure,
// the organizer subject when authenticated, and the tournament key when the
// request names one.
func rpcAttrs(ctx context.Context, req connect.AnyRequest) []any {
	attrs := []any{"procedure", req.Spec().Procedure}
	if subject := GetSubject(ctx); subject != "" {
		attrs = append(attrs, "subject", subject)
	}
	if scoped, ok := req.Any().(TournamentScoped); ok {
		if key := scoped.TournamentRef(); key != "" {
			attrs = append(attrs, "tournament_key", key)
		}
	}
	return attrs
}

// RPCLogging returns a Connect interceptor that logs each call and counts it
// by procedure and result code. Client errors (invalid argument, not found,
// unauthenticated) log at warn; anything else that fails logs at error.
// logger and m may be nil.
func RPCLogging(logger *slog.Logger, m *metrics.Metrics) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := append(rpcAttrs(ctx, req), "duration_ms", time.Since(start).Milliseconds())
			procedure := req.Spec().Procedure

			if err == nil {
				m.RPCServed(procedure, "ok")
				logger.Info("RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			m.RPCServed(procedure, code.String())

			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				attrs = append(attrs, "code", code.String(), "error", connectErr.Message())
			} else {
				attrs = append(attrs, "code", code.String(), "error", err)
			}
			switch code {
			case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeAlreadyExists,
				connect.CodeUnauthenticated, connect.CodeFailedPrecondition:
				logger.Warn("RPC rejected", attrs...)
			default:
				logger.Error("RPC failed", attrs...)
			}
			return resp, err
		}
	}
}
