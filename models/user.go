package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string    `json:"email" gorm:"size:255;index;not null"`
	Username       string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	IsSuperuser    bool      `json:"is_superuser" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Quizzes []Quiz `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
