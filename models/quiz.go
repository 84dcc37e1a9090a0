package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"size:64;not null"`
	Description *string   `json:"description" gorm:"size:64"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Owner     *User      `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Questions []Question `json:"questions" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// AnswerCount is the number of answers across all loaded questions.
func (q *Quiz) AnswerCount() int {
	n := 0
	for _, question := range q.Questions {
		n += len(question.Answers)
	}
	return n
}
