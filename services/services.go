package services

import (
	"errors"

	"quizhub/apperrors"
	"quizhub/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("quizhub/services")

const (
	msgUserNotFound     = "User not found"
	msgQuizNotFound     = "Quiz not found"
	msgQuestionNotFound = "Question not found"
	msgAnswerNotFound   = "Answer not found"
)

// lookupErr maps a repository read failure to NotFound or Internal.
func lookupErr(err error, notFound string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Internal(err)
}

// storeErr passes application errors through and wraps anything else as
// Internal, except a write that kept losing to concurrent ones.
func storeErr(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrConflict) {
		return apperrors.Wrap(apperrors.KindConflict, "Concurrent update, please retry", err)
	}
	return apperrors.Internal(err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.KindOf(err).String())
	}
	span.End()
}
