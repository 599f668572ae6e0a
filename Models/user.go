package Models

import (
	"errors"
	"html"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Clients authenticate through their
// own table and never appear here.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTherapist Role = "therapist"
)

type User struct {
	gorm.Model
	Email        string        `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string        `gorm:"size:255" json:"-"`
	Role         Role          `gorm:"size:20;not null;default:therapist" json:"role"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	Tokens       []DeviceToken `gorm:"foreignKey:UserID" json:"-"`
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func GetUserByID(uid uint) (User, error) {
	var user User

	if err := DB.First(&user, uid).Error; err != nil {
		return user, ErrUserNotFound
	}

	return user, nil
}

func GetUserByEmailAndRole(email string, role Role) (User, error) {
	var user User

	if err := DB.Where("email = ? AND role = ?", email, role).First(&user).Error; err != nil {
		return user, ErrUserNotFound
	}

	return user, nil
}

func UserEmailExists(email string) (bool, error) {
	var count int64
	err := DB.Model(&User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func VerifyPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// LoginCheck verifies a therapist's password. Accounts without a stored hash
// are OTP-only and always fail password login.
func LoginCheck(email string, password string) (User, error) {

	user, err := GetUserByEmailAndRole(email, RoleTherapist)

	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return User{}, ErrUserInactive
	}

	return user, nil
}

// SetPassword hashes and stores a new password. Admin accounts are OTP-only
// and never carry a hash.
func (user *User) SetPassword(password string) error {
	if user.Role == RoleAdmin {
		return errors.New("admin accounts are OTP-only")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	return nil
}

func (user *User) SaveUser() (*User, error) {

	user.Email = html.EscapeString(strings.TrimSpace(strings.ToLower(user.Email)))

	if err := DB.Create(&user).Error; err != nil {
		return &User{}, err
	}

	return user, nil
}
