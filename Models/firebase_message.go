package Models

import "gorm.io/gorm"

type DeviceToken struct {
	gorm.Model
	UserID uint
	Value  string `json:"value" gorm:"unique"`
}

type NotificationRequest struct {
	Tokens []string `json:"tokens"` // Multiple device tokens
	Title  string   `json:"title"`  // Notification title
	Body   string   `json:"body"`   // Notification body
}

// GetFCMsByID returns every registered device token for a user.
func GetFCMsByID(uid uint) ([]string, error) {
	var fcms []string
	if err := DB.Model(&DeviceToken{}).Where("user_id = ?", uid).Select("value").Find(&fcms).Error; err != nil {
		return []string{}, err
	}

	return fcms, nil
}
