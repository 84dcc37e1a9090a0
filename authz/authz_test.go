package authz

import (
	"testing"

	"quizhub/apperrors"
	"quizhub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (owner, other, admin Principal, answer *models.Answer) {
	owner = Principal{ID: uuid.New()}
	other = Principal{ID: uuid.New()}
	admin = Principal{ID: uuid.New(), Superuser: true}

	quiz := &models.Quiz{ID: uuid.New(), OwnerID: owner.ID, Title: "Capitals"}
	question := &models.Question{ID: uuid.New(), QuizID: quiz.ID, Quiz: quiz}
	answer = &models.Answer{ID: uuid.New(), QuestionID: question.ID, Question: question}
	return owner, other, admin, answer
}

func TestOwnerOfWalksChain(t *testing.T) {
	owner, _, _, answer := fixture()

	for _, entity := range []any{answer, answer.Question, answer.Question.Quiz} {
		got, err := OwnerOf(entity)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got)
	}
}

func TestOwnerOfUnloadedChain(t *testing.T) {
	_, err := OwnerOf(&models.Answer{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrChainNotLoaded)

	_, err = OwnerOf(&models.Question{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrChainNotLoaded)

	err = Check(Principal{ID: uuid.New(), Superuser: true}, &models.Answer{}, Read)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestNonOwnerIsDeniedEveryWrite(t *testing.T) {
	_, other, _, answer := fixture()
	entities := []any{answer.Question.Quiz, answer.Question, answer}

	for _, entity := range entities {
		for _, action := range []Action{Create, Update, Delete, Read} {
			err := Check(other, entity, action)
			assert.True(t, apperrors.Is(err, apperrors.KindForbidden), "%T %s", entity, action)
		}
	}
}

func TestOwnerIsAllowedEverything(t *testing.T) {
	owner, _, _, answer := fixture()
	entities := []any{answer.Question.Quiz, answer.Question, answer}

	for _, entity := range entities {
		for _, action := range []Action{Create, Read, Update, Delete} {
			assert.NoError(t, Check(owner, entity, action), "%T %s", entity, action)
		}
	}
}

func TestSuperuserRules(t *testing.T) {
	_, _, admin, answer := fixture()
	quiz, question := answer.Question.Quiz, answer.Question

	for _, action := range []Action{Read, Update, Delete} {
		assert.NoError(t, Check(admin, quiz, action))
		assert.NoError(t, Check(admin, question, action))
		assert.NoError(t, Check(admin, answer, action))
	}
	assert.NoError(t, Check(admin, question, Create))

	d := Authorize(admin, Resource{Kind: KindQuiz, OwnerID: quiz.OwnerID}, Create)
	assert.False(t, d.Allowed)
	d = Authorize(admin, Resource{Kind: KindAnswer, OwnerID: quiz.OwnerID}, Create)
	assert.False(t, d.Allowed)
}

func TestUserRules(t *testing.T) {
	self := &models.User{ID: uuid.New()}
	root := &models.User{ID: uuid.New(), IsSuperuser: true}
	stranger := Principal{ID: uuid.New()}

	assert.NoError(t, Check(PrincipalOf(self), self, Read))
	assert.NoError(t, Check(PrincipalOf(self), self, Update))
	assert.NoError(t, Check(PrincipalOf(self), self, Delete))
	assert.Error(t, Check(stranger, self, Read))
	assert.Error(t, Check(stranger, self, Delete))

	assert.NoError(t, Check(PrincipalOf(root), self, Delete))

	d := Authorize(PrincipalOf(root), Resource{Kind: KindUser, OwnerID: root.ID, Protected: true}, Delete)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonProtectedSuperuser, d.Reason)
	assert.Error(t, Check(PrincipalOf(root), root, Delete))
}

func TestAnonymousAndUnknownKindDenied(t *testing.T) {
	assert.False(t, Authorize(Principal{}, Resource{Kind: KindQuiz}, Read).Allowed)
	assert.False(t, Authorize(Principal{ID: uuid.New(), Superuser: true}, Resource{Kind: "game"}, Read).Allowed)
}
