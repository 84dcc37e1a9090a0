package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Answer struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;index;not null"`
	Text       string    `json:"text" gorm:"size:2048;not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	Position   int       `json:"position" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Question *Question `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (a *Answer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
