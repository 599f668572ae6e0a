package Models

import (
	"errors"

	"gorm.io/gorm"
)

// Client belongs to exactly one therapist. Email or phone is what the client
// logs in with; at least one should be present in practice (not enforced).
type Client struct {
	gorm.Model
	TherapistID uint   `gorm:"not null;index" json:"therapist_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255" json:"email"`
	Phone       string `gorm:"size:20" json:"phone"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

var ErrClientNotFound = errors.New("client not found")

// GetActiveClientByIdentifier resolves an OTP identifier (email or phone) to
// an active client.
func GetActiveClientByIdentifier(identifier string) (Client, error) {
	var client Client

	err := DB.Where("(email = ? OR phone = ?) AND is_active = ?", identifier, identifier, true).
		First(&client).Error
	if err != nil {
		return client, ErrClientNotFound
	}

	return client, nil
}

// GetTherapistClient fetches a client only if it is owned by the given
// therapist.
func GetTherapistClient(therapistID, clientID uint) (Client, error) {
	var client Client

	err := DB.Where("id = ? AND therapist_id = ?", clientID, therapistID).First(&client).Error
	if err != nil {
		return client, ErrClientNotFound
	}

	return client, nil
}
