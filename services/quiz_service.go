package services

import (
	"context"

	"quizhub/apperrors"
	"quizhub/authz"
	"quizhub/models"
	"quizhub/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

type QuizService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewQuizService(store repository.Store, logger zerolog.Logger) *QuizService {
	return &QuizService{
		store:  store,
		logger: logger.With().Str("service", "quizzes").Logger(),
	}
}

// Compose creates a quiz with all of its questions and answers in one unit
// of work and returns it re-read with every nested collection loaded.
func (s *QuizService) Compose(ctx context.Context, p authz.Principal, req CreateQuizRequest) (quiz *models.Quiz, err error) {
	ctx, span := tracer.Start(ctx, "QuizService.Compose")
	defer func() { endSpan(span, err) }()

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	ownerID := p.ID
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}
	graph := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ownerID,
		Questions:   make([]models.Question, 0, len(req.Questions)),
	}
	for i, q := range req.Questions {
		graph.Questions = append(graph.Questions, q.build(i))
	}
	span.SetAttributes(
		attribute.Int("quiz.questions", len(graph.Questions)),
		attribute.Int("quiz.answers", graph.AnswerCount()),
	)

	if err := authz.Check(p, graph, authz.Create); err != nil {
		return nil, err
	}

	err = repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		return uow.CreateQuiz(ctx, graph)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID.String()).Msg("compose quiz failed")
		return nil, apperrors.Composition(err)
	}

	quiz, err = s.store.GetQuiz(ctx, graph.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.logger.Info().
		Str("quiz_id", quiz.ID.String()).
		Int("questions", len(quiz.Questions)).
		Int("answers", quiz.AnswerCount()).
		Msg("quiz composed")
	return quiz, nil
}

func (s *QuizService) Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return nil, lookupErr(err, msgQuizNotFound)
	}
	if err := authz.Check(p, quiz, authz.Read); err != nil {
		return nil, err
	}
	return quiz, nil
}

// ListByUser returns the quizzes owned by userID. The user must exist and
// the caller must be that user or a superuser.
func (s *QuizService) ListByUser(ctx context.Context, p authz.Principal, userID uuid.UUID) ([]models.Quiz, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, msgUserNotFound)
	}
	if err := authz.Check(p, user, authz.Read); err != nil {
		return nil, err
	}
	quizzes, err := s.store.ListQuizzesByOwner(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return quizzes, nil
}

func (s *QuizService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, patch models.QuizPatch) (*models.Quiz, error) {
	if err := validateQuizPatch(patch); err != nil {
		return nil, err
	}

	var quiz *models.Quiz
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		existing, err := uow.GetQuiz(ctx, id)
		if err != nil {
			return lookupErr(err, msgQuizNotFound)
		}
		if err := authz.Check(p, existing, authz.Update); err != nil {
			return err
		}
		if err := uow.UpdateQuiz(ctx, id, patch); err != nil {
			return err
		}
		quiz, err = uow.GetQuiz(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return quiz, nil
}

// Delete removes the quiz; its questions and answers go with it.
func (s *QuizService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		quiz, err := uow.GetQuiz(ctx, id)
		if err != nil {
			return lookupErr(err, msgQuizNotFound)
		}
		if err := authz.Check(p, quiz, authz.Delete); err != nil {
			return err
		}
		return uow.DeleteQuiz(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}
	s.logger.Info().Str("quiz_id", id.String()).Str("actor_id", p.ID.String()).Msg("quiz deleted")
	return nil
}
