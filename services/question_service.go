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

type QuestionService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewQuestionService(store repository.Store, logger zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:  store,
		logger: logger.With().Str("service", "questions").Logger(),
	}
}

// Create appends a question, with its answers, to an existing quiz.
func (s *QuestionService) Create(ctx context.Context, p authz.Principal, req NewQuestionRequest) (*models.Question, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var questionID uuid.UUID
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		quiz, err := uow.GetQuiz(ctx, req.QuizID)
		if err != nil {
			return lookupErr(err, msgQuizNotFound)
		}
		question := CreateQuestionRequest{Text: req.Text, Answers: req.Answers}.build(nextQuestionPosition(quiz.Questions))
		question.QuizID = quiz.ID
		question.Quiz = quiz
		if err := authz.Check(p, &question, authz.Create); err != nil {
			return err
		}
		// nested answers follow the answer rule, which has no superuser override
		for i := range question.Answers {
			answer := question.Answers[i]
			answer.Question = &question
			if err := authz.Check(p, &answer, authz.Create); err != nil {
				return err
			}
		}
		question.Quiz = nil
		if err := uow.CreateQuestion(ctx, &question); err != nil {
			return err
		}
		questionID = question.ID
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return question, nil
}

func (s *QuestionService) Get(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Question, error) {
	question, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, lookupErr(err, msgQuestionNotFound)
	}
	if err := authz.Check(p, question, authz.Read); err != nil {
		return nil, err
	}
	return question, nil
}

// ListByQuiz returns the quiz with its questions and their answers.
func (s *QuestionService) ListByQuiz(ctx context.Context, p authz.Principal, quizID uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, lookupErr(err, msgQuizNotFound)
	}
	if err := authz.Check(p, quiz, authz.Read); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuestionService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, patch models.QuestionPatch) (*models.Question, error) {
	if err := validateQuestionPatch(patch); err != nil {
		return nil, err
	}

	var question *models.Question
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		existing, err := uow.GetQuestion(ctx, id)
		if err != nil {
			return lookupErr(err, msgQuestionNotFound)
		}
		if err := authz.Check(p, existing, authz.Update); err != nil {
			return err
		}
		if err := uow.UpdateQuestion(ctx, id, patch); err != nil {
			return err
		}
		question, err = uow.GetQuestion(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return question, nil
}

func (s *QuestionService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	err := repository.Within(ctx, s.store, func(uow repository.UnitOfWork) error {
		question, err := uow.GetQuestion(ctx, id)
		if err != nil {
			return lookupErr(err, msgQuestionNotFound)
		}
		if err := authz.Check(p, question, authz.Delete); err != nil {
			return err
		}
		return uow.DeleteQuestion(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}
	s.logger.Info().Str("question_id", id.String()).Str("actor_id", p.ID.String()).Msg("question deleted")
	return nil
}
