package services

import (
	"context"
	"errors"
	"testing"

	"quizhub/apperrors"
	"quizhub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeBuildsWholeGraph(t *testing.T) {
	f := newFixture(t)
	alice, p := f.register(t, "alice")

	quiz := f.compose(t, p)

	assert.NotEqual(t, uuid.Nil, quiz.ID)
	assert.Equal(t, alice.ID, quiz.OwnerID)
	assert.Equal(t, "European capitals", quiz.Title)
	require.NotNil(t, quiz.Description)
	assert.Equal(t, "Two questions about Europe", *quiz.Description)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Capital of France?", quiz.Questions[0].Text)
	assert.Equal(t, 0, quiz.Questions[0].Position)
	assert.Equal(t, 1, quiz.Questions[1].Position)
	require.Len(t, quiz.Questions[1].Answers, 2)
	assert.Equal(t, "Madrid", quiz.Questions[1].Answers[1].Text)
	assert.True(t, quiz.Questions[1].Answers[1].IsCorrect)
	assert.Equal(t, 4, quiz.AnswerCount())

	_, quizzes, questions, answers := f.store.Counts()
	assert.Equal(t, 1, quizzes)
	assert.Equal(t, 2, questions)
	assert.Equal(t, 4, answers)
}

func TestComposeWithoutQuestions(t *testing.T) {
	f := newFixture(t)
	_, p := f.register(t, "alice")

	quiz, err := f.quizzes.Compose(context.Background(), p, CreateQuizRequest{Title: "Empty quiz"})
	require.NoError(t, err)
	assert.Empty(t, quiz.Questions)
	assert.Nil(t, quiz.Description)
}

func TestComposeIsAtomic(t *testing.T) {
	f := newFixture(t)
	_, p := f.register(t, "alice")

	answersWritten := 0
	f.store.FailOn = func(op string) error {
		if op != "create answer" {
			return nil
		}
		answersWritten++
		if answersWritten == 3 {
			return errors.New("disk full")
		}
		return nil
	}

	quiz, err := f.quizzes.Compose(context.Background(), p, capitalsQuiz())
	require.Error(t, err)
	assert.Nil(t, quiz)
	assert.True(t, apperrors.Is(err, apperrors.KindComposition))
	assert.Equal(t, "Quiz can't be created", apperrors.PublicMessage(err))

	users, quizzes, questions, answers := f.store.Counts()
	assert.Equal(t, 1, users)
	assert.Zero(t, quizzes)
	assert.Zero(t, questions)
	assert.Zero(t, answers)
}

func TestComposeRejectsForeignOwner(t *testing.T) {
	f := newFixture(t)
	alice, alicePrincipal := f.register(t, "alice")
	bob, _ := f.register(t, "bob")
	_, admin := f.superuser(t)
	ctx := context.Background()

	req := capitalsQuiz()
	req.OwnerID = &bob.ID
	_, err := f.quizzes.Compose(ctx, alicePrincipal, req)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	req.OwnerID = &alice.ID
	_, err = f.quizzes.Compose(ctx, admin, req)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	quiz, err := f.quizzes.Compose(ctx, alicePrincipal, req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, quiz.OwnerID)
}

func TestComposeValidatesNestedFields(t *testing.T) {
	f := newFixture(t)
	_, p := f.register(t, "alice")
	ctx := context.Background()

	req := capitalsQuiz()
	req.Title = "Short"
	_, err := f.quizzes.Compose(ctx, p, req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "title")

	req = capitalsQuiz()
	req.Questions[1].Answers[0].Text = "no"
	_, err = f.quizzes.Compose(ctx, p, req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "questions[1].answers[0].text")

	_, quizzes, _, _ := f.store.Counts()
	assert.Zero(t, quizzes)
}

func TestQuizReadIsOwnerOrSuperuser(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	_, admin := f.superuser(t)
	quiz := f.compose(t, alice)
	ctx := context.Background()

	_, err := f.quizzes.Get(ctx, bob, quiz.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	got, err := f.quizzes.Get(ctx, admin, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, got.ID)

	_, err = f.quizzes.Get(ctx, alice, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestListByUser(t *testing.T) {
	f := newFixture(t)
	alice, alicePrincipal := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	_, admin := f.superuser(t)
	f.compose(t, alicePrincipal)
	f.compose(t, alicePrincipal)
	ctx := context.Background()

	quizzes, err := f.quizzes.ListByUser(ctx, alicePrincipal, alice.ID)
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)

	quizzes, err = f.quizzes.ListByUser(ctx, admin, alice.ID)
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)

	_, err = f.quizzes.ListByUser(ctx, bob, alice.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = f.quizzes.ListByUser(ctx, admin, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestQuizPartialUpdate(t *testing.T) {
	f := newFixture(t)
	_, p := f.register(t, "alice")
	quiz := f.compose(t, p)
	ctx := context.Background()

	updated, err := f.quizzes.Update(ctx, p, quiz.ID, models.QuizPatch{Title: models.Some("Capitals of Europe")})
	require.NoError(t, err)
	assert.Equal(t, "Capitals of Europe", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Two questions about Europe", *updated.Description)
	assert.Len(t, updated.Questions, 2)

	updated, err = f.quizzes.Update(ctx, p, quiz.ID, models.QuizPatch{Description: models.Some[*string](nil)})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "Capitals of Europe", updated.Title)

	_, err = f.quizzes.Update(ctx, p, quiz.ID, models.QuizPatch{Title: models.Some("tiny")})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestQuizUpdateForbiddenLeavesQuizUntouched(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	quiz := f.compose(t, alice)
	ctx := context.Background()

	_, err := f.quizzes.Update(ctx, bob, quiz.ID, models.QuizPatch{Title: models.Some("Hijacked quiz")})
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	got, err := f.quizzes.Get(ctx, alice, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "European capitals", got.Title)
}

func TestQuizDelete(t *testing.T) {
	f := newFixture(t)
	_, alice := f.register(t, "alice")
	_, bob := f.register(t, "bob")
	_, admin := f.superuser(t)
	quiz := f.compose(t, alice)
	ctx := context.Background()

	err := f.quizzes.Delete(ctx, bob, quiz.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
	_, quizzes, _, _ := f.store.Counts()
	assert.Equal(t, 1, quizzes)

	require.NoError(t, f.quizzes.Delete(ctx, admin, quiz.ID))
	_, quizzes, questions, answers := f.store.Counts()
	assert.Zero(t, quizzes)
	assert.Zero(t, questions)
	assert.Zero(t, answers)

	err = f.quizzes.Delete(ctx, alice, quiz.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
