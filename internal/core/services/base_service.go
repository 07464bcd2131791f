package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeOwner checks that identity may act on a resource owned by ownerUserID.
func (s *BaseService) AuthorizeOwner(ctx context.Context, identity domain.Identity, ownerUserID, resource string) error {
	if identity.CanAccess(ownerUserID) {
		return nil
	}
	s.LogDebug(ctx, "Access denied",
		slog.String("user_id", identity.UserID),
		slog.String("resource", resource))
	return fmt.Errorf("%s: %w", resource, apperrors.ErrUnauthorized)
}

// RequireUser rejects the system identity and anonymous callers for user-scoped operations.
func (s *BaseService) RequireUser(identity domain.Identity) error {
	if identity.System || identity.UserID == "" {
		return fmt.Errorf("a user identity is required: %w", apperrors.ErrUnauthorized)
	}
	return nil
}
