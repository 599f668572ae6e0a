package Models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorksheetStatus string

const (
	WorksheetAssigned   WorksheetStatus = "assigned"
	WorksheetInProgress WorksheetStatus = "in_progress"
	WorksheetCompleted  WorksheetStatus = "completed"
	WorksheetReviewed   WorksheetStatus = "reviewed"
)

// WorksheetTemplate holds the prompt structure therapists assign from.
type WorksheetTemplate struct {
	gorm.Model
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `json:"description"`
	Prompts     datatypes.JSON `gorm:"not null" json:"prompts"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
}

// WorksheetInstance is a template assigned to a client by a therapist.
type WorksheetInstance struct {
	gorm.Model
	TemplateID     uint              `gorm:"not null" json:"template_id"`
	Template       WorksheetTemplate `gorm:"constraint:OnDelete:CASCADE;" json:"template"`
	ClientID       uint              `gorm:"not null;index" json:"client_id"`
	TherapistID    uint              `gorm:"not null;index" json:"therapist_id"`
	Responses      datatypes.JSON    `json:"responses"`
	TherapistNotes string            `json:"therapist_notes"`
	Status         WorksheetStatus   `gorm:"size:20;not null;default:assigned" json:"status"`
	AssignedAt     time.Time         `gorm:"not null" json:"assigned_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
	ReviewedAt     *time.Time        `json:"reviewed_at"`
	ReminderSent   bool              `gorm:"not null;default:false" json:"reminder_sent"`
}

var ErrWorksheetNotFound = errors.New("worksheet not found")

func GetTemplateByID(id uint) (WorksheetTemplate, error) {
	var template WorksheetTemplate
	if err := DB.First(&template, id).Error; err != nil {
		return template, ErrWorksheetNotFound
	}
	return template, nil
}
