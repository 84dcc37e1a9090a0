// Package repository holds the storage contracts for users, quizzes,
// questions and answers, plus a gorm (Postgres) and an in-memory adapter.
//
// Eager-loading contract:
//   - GetQuiz loads Questions and their Answers, ordered by position.
//   - GetQuestion loads the parent Quiz and the Answers.
//   - GetAnswer loads the Question and that Question's Quiz.
package repository

import (
	"context"
	"errors"

	"quizhub/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrTxDone    = errors.New("unit of work already finished")
	// ErrConflict means a unit of work lost a race with a concurrent write
	// and nothing it wrote was kept.
	ErrConflict  = errors.New("concurrent write conflict")
)


type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	// DeleteUser removes the user and everything they own.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// CreateQuiz persists quiz together with its Questions and their Answers.
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuizzesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Quiz, error)
	UpdateQuiz(ctx context.Context, id uuid.UUID, patch models.QuizPatch) error
	DeleteQuiz(ctx context.Context, id uuid.UUID) error

	// CreateQuestion persists question together with its Answers.
	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, patch models.QuestionPatch) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error

	CreateAnswer(ctx context.Context, answer *models.Answer) error
	GetAnswer(ctx context.Context, id uuid.UUID) (*models.Answer, error)
	UpdateAnswer(ctx context.Context, id uuid.UUID, patch models.AnswerPatch) error
	DeleteAnswer(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork is a Repository bound to one transaction. Exactly one of
// Commit or Rollback must be called.
type UnitOfWork interface {
	Repository
	Commit() error
	Rollback() error
}

// Store is the non-transactional Repository that can start units of work.
type Store interface {
	Repository
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Within runs fn inside a unit of work, committing when fn returns nil and
// rolling back on error or panic. A lost race surfaces as ErrConflict from
// Commit; it is not retried.
func Within(ctx context.Context, store Store, fn func(UnitOfWork) error) (err error) {
	uow, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
	}()

	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
