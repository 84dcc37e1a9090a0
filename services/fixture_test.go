package services

import (
	"context"
	"testing"
	"time"

	"quizhub/authz"
	"quizhub/models"
	"quizhub/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store     *repository.MemoryStore
	clock     *fakeClock
	tokens    *TokenService
	auth      *AuthService
	users     *UserService
	quizzes   *QuizService
	questions *QuestionService
	answers   *AnswerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock, WithRevocations(NewMemoryRevocations()))
	hasher := NewBcryptHasher(bcrypt.MinCost)
	logger := zerolog.Nop()

	return &fixture{
		store:     store,
		clock:     clock,
		tokens:    tokens,
		auth:      NewAuthService(store, hasher, tokens, logger),
		users:     NewUserService(store, hasher, tokens, logger),
		quizzes:   NewQuizService(store, logger),
		questions: NewQuestionService(store, logger),
		answers:   NewAnswerService(store, logger),
	}
}

func (f *fixture) register(t *testing.T, username string) (*models.User, authz.Principal) {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return user, authz.PrincipalOf(user)
}

func (f *fixture) superuser(t *testing.T) (*models.User, authz.Principal) {
	t.Helper()
	ctx := context.Background()
	_, err := f.auth.EnsureSuperuser(ctx, "admin", "admin@example.com", "adminpass123")
	require.NoError(t, err)
	user, err := f.store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	return user, authz.PrincipalOf(user)
}

func capitalsQuiz() CreateQuizRequest {
	description := "Two questions about Europe"
	return CreateQuizRequest{
		Title:       "European capitals",
		Description: &description,
		Questions: []CreateQuestionRequest{
			{Text: "Capital of France?", Answers: []CreateAnswerRequest{
				{Text: "Paris", IsCorrect: true},
				{Text: "Lyon"},
			}},
			{Text: "Capital of Spain?", Answers: []CreateAnswerRequest{
				{Text: "Seville"},
				{Text: "Madrid", IsCorrect: true},
			}},
		},
	}
}

func (f *fixture) compose(t *testing.T, p authz.Principal) *models.Quiz {
	t.Helper()
	quiz, err := f.quizzes.Compose(context.Background(), p, capitalsQuiz())
	require.NoError(t, err)
	return quiz
}
