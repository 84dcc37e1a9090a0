package repository

import (
	"context"
	"errors"

	"quizhub/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// PostgresStore is the gorm-backed Store. Cascading deletes rely on the
// ON DELETE CASCADE foreign keys created by config.Migrate.
type PostgresStore struct {
	gormRepository
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{gormRepository{db: db}}
}

func (s *PostgresStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormUnitOfWork{gormRepository{db: tx}}, nil
}

type gormUnitOfWork struct {
	gormRepository
}

func (u *gormUnitOfWork) Commit() error {
	return translate(u.db.Commit().Error)
}

func (u *gormUnitOfWork) Rollback() error {
	err := u.db.Rollback().Error
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return nil
	}
	return err
}

func (r gormRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit("Quizzes").Create(user).Error)
}

func (r gormRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormRepository) UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	return updateColumns(ctx, r.db, &models.User{}, id, map[string]any{"hashed_password": hashedPassword})
}

func (r gormRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.User{}, id)
}

// CreateQuiz inserts the quiz, then each question, then each question's
// answers, assigning parent ids on the way down.
func (r gormRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Questions", "Owner").Create(quiz).Error; err != nil {
		return translate(err)
	}
	for i := range quiz.Questions {
		quiz.Questions[i].QuizID = quiz.ID
		if err := r.CreateQuestion(ctx, &quiz.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r gormRepository) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := withQuestions(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, translate(err)
	}
	return &quiz, nil
}

func (r gormRepository) ListQuizzesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := withQuestions(r.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, translate(err)
}

func (r gormRepository) UpdateQuiz(ctx context.Context, id uuid.UUID, patch models.QuizPatch) error {
	return updateColumns(ctx, r.db, &models.Quiz{}, id, patch.Columns())
}

func (r gormRepository) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Quiz{}, id)
}

func (r gormRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Answers", "Quiz").Create(question).Error; err != nil {
		return translate(err)
	}
	for i := range question.Answers {
		question.Answers[i].QuestionID = question.ID
		if err := r.CreateAnswer(ctx, &question.Answers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r gormRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Quiz").
		Preload("Answers", byPosition).
		Where("id = ?", id).
		First(&question).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r gormRepository) UpdateQuestion(ctx context.Context, id uuid.UUID, patch models.QuestionPatch) error {
	return updateColumns(ctx, r.db, &models.Question{}, id, patch.Columns())
}

func (r gormRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Question{}, id)
}

func (r gormRepository) CreateAnswer(ctx context.Context, answer *models.Answer) error {
	return translate(r.db.WithContext(ctx).Omit("Question").Create(answer).Error)
}

func (r gormRepository) GetAnswer(ctx context.Context, id uuid.UUID) (*models.Answer, error) {
	var answer models.Answer
	err := r.db.WithContext(ctx).
		Preload("Question.Quiz").
		Where("id = ?", id).
		First(&answer).Error
	if err != nil {
		return nil, translate(err)
	}
	return &answer, nil
}

func (r gormRepository) UpdateAnswer(ctx context.Context, id uuid.UUID, patch models.AnswerPatch) error {
	return updateColumns(ctx, r.db, &models.Answer{}, id, patch.Columns())
}

func (r gormRepository) DeleteAnswer(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Answer{}, id)
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func withQuestions(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", byPosition).
		Preload("Questions.Answers", byPosition)
}

func updateColumns(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	result := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	case isSerializationFailure(err):
		return ErrConflict
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// serialization_failure and deadlock_detected; both are safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}
