package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationModel mirrors the 'applications' table.
type ApplicationModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Reference   string    `gorm:"type:varchar(50);unique;not null"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(50);not null"`
	Summary     string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ApplicationModel) TableName() string {
	return "applications"
}
