package services

import (
	"quizhub/models"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=64,bcryptlen"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=64,bcryptlen"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=64,bcryptlen"`
}

type CreateQuizRequest struct {
	Title       string  `json:"title" validate:"required,min=6,max=64"`
	Description *string `json:"description" validate:"omitempty,max=64"`
	// OwnerID may be omitted; when present it must be the caller.
	OwnerID   *uuid.UUID              `json:"owner_id"`
	Questions []CreateQuestionRequest `json:"questions" validate:"dive"`
}

type CreateQuestionRequest struct {
	Text    string                `json:"text" validate:"required,min=4,max=2048"`
	Answers []CreateAnswerRequest `json:"answers" validate:"dive"`
}

type CreateAnswerRequest struct {
	Text      string `json:"text" validate:"required,min=4,max=2048"`
	IsCorrect bool   `json:"is_correct"`
}

// NewQuestionRequest adds a question, with optional answers, to an existing quiz.
type NewQuestionRequest struct {
	QuizID  uuid.UUID             `json:"quiz_id" validate:"required"`
	Text    string                `json:"text" validate:"required,min=4,max=2048"`
	Answers []CreateAnswerRequest `json:"answers" validate:"dive"`
}

// NewAnswerRequest adds an answer to an existing question.
type NewAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Text       string    `json:"text" validate:"required,min=4,max=2048"`
	IsCorrect  bool      `json:"is_correct"`
}

func (r CreateQuestionRequest) build(position int) models.Question {
	question := models.Question{
		Text:     r.Text,
		Position: position,
		Answers:  make([]models.Answer, 0, len(r.Answers)),
	}
	for i, a := range r.Answers {
		question.Answers = append(question.Answers, a.build(i))
	}
	return question
}

func (r CreateAnswerRequest) build(position int) models.Answer {
	return models.Answer{
		Text:      r.Text,
		IsCorrect: r.IsCorrect,
		Position:  position,
	}
}

// nextQuestionPosition places a new question after every existing one, so
// positions stay unique after deletes.
func nextQuestionPosition(questions []models.Question) int {
	next := 0
	for _, q := range questions {
		if q.Position >= next {
			next = q.Position + 1
		}
	}
	return next
}

func nextAnswerPosition(answers []models.Answer) int {
	next := 0
	for _, a := range answers {
		if a.Position >= next {
			next = a.Position + 1
		}
	}
	return next
}

func validateQuizPatch(p models.QuizPatch) error {
	if p.Title.Set {
		if err := validateField("title", p.Title.Value, "required,"+quizTitleRule); err != nil {
			return err
		}
	}
	if p.Description.Set && p.Description.Value != nil {
		if err := validateField("description", *p.Description.Value, quizDescriptionRule); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestionPatch(p models.QuestionPatch) error {
	if p.Text.Set {
		return validateField("text", p.Text.Value, "required,"+questionTextRule)
	}
	return nil
}

func validateAnswerPatch(p models.AnswerPatch) error {
	if p.Text.Set {
		return validateField("text", p.Text.Value, "required,"+answerTextRule)
	}
	return nil
}
