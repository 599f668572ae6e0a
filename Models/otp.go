package Models

import (
	"errors"
	"math/rand"
	"time"

	"github.com/gweakliem/crane-beta/Constants"
	"gorm.io/gorm"
)

// Channel is the delivery channel for a one-time passcode.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Subject tags which credential space an OTP belongs to.
type Subject string

const (
	SubjectAdmin     Subject = "admin"
	SubjectTherapist Subject = "therapist"
	SubjectClient    Subject = "client"
)

// OTPCode rows are written once on issuance and mutated exactly once when the
// used flag flips on a successful verification. Rows are retained after use.
type OTPCode struct {
	gorm.Model
	Identifier string    `gorm:"size:255;not null;index" json:"identifier"`
	Code       string    `gorm:"size:10;not null" json:"-"`
	Channel    Channel   `gorm:"size:20;not null" json:"channel"`
	Subject    Subject   `gorm:"size:20;not null" json:"subject"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	IsUsed     bool      `gorm:"not null;default:false" json:"is_used"`
}

var ErrOTPInvalid = errors.New("invalid or expired OTP")

// GenerateOTP returns a uniformly random 6-digit decimal code.
func GenerateOTP() string {
	var digits = []rune("1234567890")

	code := make([]rune, 6)
	for index := range code {
		code[index] = digits[rand.Intn(len(digits))]
	}
	code[0] = digits[rand.Intn(9)] // no leading zero
	return string(code)
}

// CreateOTP persists a fresh code with the standard 5 minute expiry.
func CreateOTP(identifier string, channel Channel, subject Subject) (OTPCode, error) {
	otp := OTPCode{
		Identifier: identifier,
		Code:       GenerateOTP(),
		Channel:    channel,
		Subject:    subject,
		ExpiresAt:  time.Now().Add(Constants.OTPDuration),
	}

	if err := DB.Create(&otp).Error; err != nil {
		return OTPCode{}, err
	}

	return otp, nil
}

// ConsumeOTP flips the used flag with a single conditional update so that two
// racing verifications of the same code cannot both succeed. Zero affected
// rows means no live code matched.
func ConsumeOTP(identifier, code string, subject Subject) error {
	res := DB.Model(&OTPCode{}).
		Where("identifier = ? AND code = ? AND subject = ? AND is_used = ? AND expires_at > ?",
			identifier, code, subject, false, time.Now()).
		Update("is_used", true)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOTPInvalid
	}
	return nil
}
