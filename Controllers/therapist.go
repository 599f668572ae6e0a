package Controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gweakliem/crane-beta/Models"

	"github.com/gin-gonic/gin"
)

type TherapistRow struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	ClientCount int64     `json:"client_count"`
}

// GetTherapists lists every therapist with a client count, oldest first.
func GetTherapists(c *gin.Context) {
	var rows []TherapistRow

	err := Models.DB.Model(&Models.User{}).
		Select("users.id, users.email, users.name, users.is_active, users.created_at, count(clients.id) as client_count").
		Joins("LEFT JOIN clients ON clients.therapist_id = users.id AND clients.deleted_at IS NULL").
		Where("users.role = ?", Models.RoleTherapist).
		Group("users.id, users.email, users.name, users.is_active, users.created_at").
		Order("users.created_at").
		Scan(&rows).Error
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch therapists"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

type CreateTherapistInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// CreateTherapist registers a therapist account. Without a password the
// account is OTP-only; a password enables the login endpoint as well.
func CreateTherapist(c *gin.Context) {
	var input CreateTherapistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := Models.UserEmailExists(input.Email)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	therapist := Models.User{
		Name:     input.Name,
		Email:    input.Email,
		Role:     Models.RoleTherapist,
		IsActive: true,
	}

	if input.Password != "" {
		if err := therapist.SetPassword(input.Password); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set password"})
			return
		}
	}

	if _, err := therapist.SaveUser(); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create therapist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         therapist.ID,
		"email":      therapist.Email,
		"name":       therapist.Name,
		"role":       therapist.Role,
		"is_active":  therapist.IsActive,
		"created_at": therapist.CreatedAt,
	})
}

type UpdateTherapistInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

func UpdateTherapist(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Therapist ID is required"})
		return
	}

	var input UpdateTherapistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var therapist Models.User
	if err := Models.DB.Where("id = ? AND role = ?", id, Models.RoleTherapist).First(&therapist).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		return
	}

	if input.Name != nil {
		therapist.Name = *input.Name
	}
	if input.Email != nil {
		therapist.Email = *input.Email
	}
	if input.IsActive != nil {
		therapist.IsActive = *input.IsActive
	}
	if input.Password != nil && *input.Password != "" {
		if err := therapist.SetPassword(*input.Password); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set password"})
			return
		}
	}

	if err := Models.DB.Save(&therapist).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update therapist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         therapist.ID,
		"email":      therapist.Email,
		"name":       therapist.Name,
		"is_active":  therapist.IsActive,
		"updated_at": therapist.UpdatedAt,
	})
}

// GetAdminStats aggregates the dashboard numbers.
func GetAdminStats(c *gin.Context) {
	var totalTherapists, activeClients, pendingWorksheets int64

	if err := Models.DB.Model(&Models.User{}).Where("role = ?", Models.RoleTherapist).Count(&totalTherapists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	if err := Models.DB.Model(&Models.Client{}).Where("is_active = ?", true).Count(&activeClients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	if err := Models.DB.Model(&Models.WorksheetInstance{}).Where("status = ?", Models.WorksheetAssigned).Count(&pendingWorksheets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalTherapists":   totalTherapists,
		"activeClients":     activeClients,
		"pendingWorksheets": pendingWorksheets,
	})
}
