package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID    uuid.UUID `json:"quiz_id" gorm:"type:uuid;index;not null"`
	Text      string    `json:"text" gorm:"size:2048;not null"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Quiz    *Quiz    `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Answers []Answer `json:"answers" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
