package services

import (
	"context"

	"quizhub/apperrors"
	"quizhub/authz"
	"quizhub/models"
	"quizhub/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AnswerService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewAnswerService(store repository.Store, logger zerolog.Logger) *AnswerService {
	return &AnswerService{
		store:  store,
		logger: logger.With().Str("service", "answers").Logger(),
	}
}

// Create adds an answer to a question. Only the owner of the question's
// quiz may do so.
func (s *AnswerService) Create(ctx context.Context, p authz.Principal, req NewAnswerRequest) (*models.Answer, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var answerID uuid.UUID
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		question, err := uow.GetQuestion(ctx, req.QuestionID)
		if err != nil {
			return lookupErr(err, msgQuestionNotFound)
		}
		answer := CreateAnswerRequest{Text: req.Text, IsCorrect: req.IsCorrect}.build(nextAnswerPosition(question.Answers))
		answer.QuestionID = question.ID
		answer.Question = question
		if err := authz.Check(p, &answer, authz.Create); err != nil {
			return err
		}
		answer.Question = nil
		if err := uow.CreateAnswer(ctx, &answer); err != nil {
			return err
		}
		answerID = answer.ID
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	answer, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return answer, nil
}

func (s *AnswerService) Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Answer, error) {
	answer, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return nil, lookupErr(err, msgAnswerNotFound)
	}
	if err := authz.Check(p, answer, authz.Read); err != nil {
		return nil, err
	}
	return answer, nil
}

// ListByQuestion returns the question with its answers.
func (s *AnswerService) ListByQuestion(ctx context.Context, p authz.Principal, questionID uuid.UUID) (*models.Question, error) {
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, lookupErr(err, msgQuestionNotFound)
	}
	if err := authz.Check(p, question, authz.Read); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *AnswerService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, patch models.AnswerPatch) (*models.Answer, error) {
	if err := validateAnswerPatch(patch); err != nil {
		return nil, err
	}

	var answer *models.Answer
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		existing, err := uow.GetAnswer(ctx, id)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if err := authz.Check(p, existing, authz.Update); err != nil {
			return err
		}
		if err := uow.UpdateAnswer(ctx, id, patch); err != nil {
			return err
		}
		answer, err = uow.GetAnswer(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return answer, nil
}

func (s *AnswerService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		answer, err := uow.GetAnswer(ctx, id)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if err := authz.Check(p, answer, authz.Delete); err != nil {
			return err
		}
		return uow.DeleteAnswer(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}
	s.logger.Info().Str("answer_id", id.String()).Str("actor_id", p.ID.String()).Msg("answer deleted")
	return nil
}
