package service

import (
	"context"
	"errors"
	"log/slog"

	"postboard/internal/database"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
)

// classify turns a repository error into an AppError. Errors that are
// already AppErrors pass through; raw store errors never leave the service
// layer unclassified.
func classify(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		return &models.AppError{Code: models.CodeNotFound, Message: "Post not found", Err: err}
	case errors.Is(err, repository.ErrCommentNotFound):
		return &models.AppError{Code: models.CodeNotFound, Message: "Comment not found", Err: err}
	case errors.Is(err, repository.ErrAlreadyReported):
		return models.NewAlreadyReportedError("You have already reported this item.")
	case database.IsTransient(err):
		observability.StoreRetryLater.WithLabelValues(operation).Inc()
		middleware.Logger.WarnContext(ctx, "store busy, asking client to retry",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return models.NewRetryLaterError(err)
	default:
		middleware.Logger.ErrorContext(ctx, "store operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return models.NewInternalError(err)
	}
}
