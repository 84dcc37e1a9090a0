package repository

import (
	"context"
	"errors"
	"testing"

	"quizhub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store adapter must share.
// open returns an empty store for each subtest.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	t.Run("GetQuizLoadsOrderedGraph", func(t *testing.T) {
		store := open(t)
		_, created := seedQuiz(t, store)

		quiz, err := store.GetQuiz(context.Background(), created.ID)
		require.NoError(t, err)
		require.Len(t, quiz.Questions, 2)
		assert.Equal(t, "Capital of France?", quiz.Questions[0].Text)
		assert.Equal(t, "Capital of Spain?", quiz.Questions[1].Text)
		require.Len(t, quiz.Questions[1].Answers, 2)
		assert.Equal(t, "Seville", quiz.Questions[1].Answers[0].Text)
		assert.Equal(t, "Madrid", quiz.Questions[1].Answers[1].Text)
		assert.Equal(t, 4, quiz.AnswerCount())
	})

	t.Run("EagerLoadsParents", func(t *testing.T) {
		store := open(t)
		owner, quiz := seedQuiz(t, store)
		ctx := context.Background()

		question, err := store.GetQuestion(ctx, quiz.Questions[0].ID)
		require.NoError(t, err)
		require.NotNil(t, question.Quiz)
		assert.Equal(t, owner.ID, question.Quiz.OwnerID)
		assert.Len(t, question.Answers, 2)

		answer, err := store.GetAnswer(ctx, quiz.Questions[0].Answers[0].ID)
		require.NoError(t, err)
		require.NotNil(t, answer.Question)
		require.NotNil(t, answer.Question.Quiz)
		assert.Equal(t, owner.ID, answer.Question.Quiz.OwnerID)
	})

	t.Run("ListQuizzesByOwner", func(t *testing.T) {
		store := open(t)
		owner, _ := seedQuiz(t, store)
		other := seedUser(t, store, "bob")
		ctx := context.Background()

		quizzes, err := store.ListQuizzesByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, quizzes, 1)
		assert.Len(t, quizzes[0].Questions, 2)

		quizzes, err = store.ListQuizzesByOwner(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, quizzes)
	})

	t.Run("PatchLeavesOtherFields", func(t *testing.T) {
		store := open(t)
		_, quiz := seedQuiz(t, store)
		ctx := context.Background()
		answerID := quiz.Questions[0].Answers[0].ID

		require.NoError(t, store.UpdateAnswer(ctx, answerID, models.AnswerPatch{IsCorrect: models.Some(false)}))
		answer, err := store.GetAnswer(ctx, answerID)
		require.NoError(t, err)
		assert.Equal(t, "Paris", answer.Text)
		assert.False(t, answer.IsCorrect)

		require.NoError(t, store.UpdateQuiz(ctx, quiz.ID, models.QuizPatch{Description: models.Some[*string](nil)}))
		updated, err := store.GetQuiz(ctx, quiz.ID)
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
		assert.Equal(t, "European capitals", updated.Title)
	})

	t.Run("MissingRowsAreNotFound", func(t *testing.T) {
		store := open(t)
		ctx := context.Background()
		missing := uuid.New()

		_, err := store.GetQuiz(ctx, missing)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.UpdateQuestion(ctx, missing, models.QuestionPatch{Text: models.Some("Anything?")}), ErrNotFound)
		assert.ErrorIs(t, store.UpdateUserPassword(ctx, missing, "x"), ErrNotFound)
		assert.ErrorIs(t, store.DeleteAnswer(ctx, missing), ErrNotFound)
		assert.ErrorIs(t, store.DeleteUser(ctx, missing), ErrNotFound)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		store := open(t)
		seedUser(t, store, "bob")

		err := store.CreateUser(context.Background(), &models.User{Username: "bob", Email: "bob2@example.com", HashedPassword: "x"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("DeleteQuizCascades", func(t *testing.T) {
		store := open(t)
		_, quiz := seedQuiz(t, store)
		ctx := context.Background()

		require.NoError(t, store.DeleteQuiz(ctx, quiz.ID))

		_, err := store.GetQuestion(ctx, quiz.Questions[1].ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetAnswer(ctx, quiz.Questions[1].Answers[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.DeleteQuiz(ctx, quiz.ID), ErrNotFound)
	})

	t.Run("DeleteQuestionCascades", func(t *testing.T) {
		store := open(t)
		_, quiz := seedQuiz(t, store)
		ctx := context.Background()

		require.NoError(t, store.DeleteQuestion(ctx, quiz.Questions[0].ID))

		_, err := store.GetAnswer(ctx, quiz.Questions[0].Answers[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
		remaining, err := store.GetQuiz(ctx, quiz.ID)
		require.NoError(t, err)
		require.Len(t, remaining.Questions, 1)
		assert.Equal(t, "Capital of Spain?", remaining.Questions[0].Text)
	})

	t.Run("DeleteUserCascades", func(t *testing.T) {
		store := open(t)
		owner, quiz := seedQuiz(t, store)
		ctx := context.Background()

		require.NoError(t, store.DeleteUser(ctx, owner.ID))

		_, err := store.GetQuiz(ctx, quiz.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetAnswer(ctx, quiz.Questions[0].Answers[1].ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UnknownParentRejected", func(t *testing.T) {
		store := open(t)
		err := store.CreateAnswer(context.Background(), &models.Answer{QuestionID: uuid.New(), Text: "orphan"})
		assert.Error(t, err)
	})

	t.Run("WithinRollsBackOnError", func(t *testing.T) {
		store := open(t)
		owner, _ := seedQuiz(t, store)
		ctx := context.Background()
		boom := errors.New("boom")

		err := Within(ctx, store, func(uow UnitOfWork) error {
			if err := uow.CreateQuiz(ctx, &models.Quiz{Title: "Discarded quiz", OwnerID: owner.ID}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		quizzes, err := store.ListQuizzesByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, quizzes, 1)
	})

	t.Run("WithinCommits", func(t *testing.T) {
		store := open(t)
		owner, _ := seedQuiz(t, store)
		ctx := context.Background()

		err := Within(ctx, store, func(uow UnitOfWork) error {
			return uow.CreateQuiz(ctx, &models.Quiz{Title: "Second quiz", OwnerID: owner.ID})
		})
		require.NoError(t, err)

		quizzes, err := store.ListQuizzesByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, quizzes, 2)
	})

	t.Run("FinishedUnitOfWork", func(t *testing.T) {
		store := open(t)
		uow, err := store.Begin(context.Background())
		require.NoError(t, err)
		require.NoError(t, uow.Rollback())
		assert.Error(t, uow.Commit())
	})
}

func seedUser(t *testing.T, store Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", HashedPassword: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedQuiz(t *testing.T, store Store) (*models.User, *models.Quiz) {
	t.Helper()
	owner := seedUser(t, store, "alice")

	quiz := &models.Quiz{
		Title:       "European capitals",
		Description: ptr("Two questions about Europe"),
		OwnerID:     owner.ID,
		Questions: []models.Question{
			{Text: "Capital of France?", Position: 0, Answers: []models.Answer{
				{Text: "Paris", IsCorrect: true, Position: 0},
				{Text: "Lyon", Position: 1},
			}},
			{Text: "Capital of Spain?", Position: 1, Answers: []models.Answer{
				{Text: "Seville", Position: 0},
				{Text: "Madrid", IsCorrect: true, Position: 1},
			}},
		},
	}
	require.NoError(t, store.CreateQuiz(context.Background(), quiz))
	return owner, quiz
}

func ptr[T any](v T) *T { return &v }
