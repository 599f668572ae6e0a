package Controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gweakliem/crane-beta/Models"

	"github.com/gin-gonic/gin"
)

// FetchClients lists the authenticated therapist's clients.
func FetchClients(c *gin.Context) {
	therapistID := c.GetUint("userID")

	var clients []Models.Client
	if err := Models.DB.Where("therapist_id = ?", therapistID).Order("created_at").Find(&clients).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

type CreateClientInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := Models.Client{
		TherapistID: c.GetUint("userID"),
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		IsActive:    true,
	}

	if err := Models.DB.Create(&client).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

type UpdateClientInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// UpdateClient only touches clients owned by the authenticated therapist;
// anyone else's client is a 404, not a 403, to avoid leaking existence.
func UpdateClient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client ID is required"})
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := Models.GetTherapistClient(c.GetUint("userID"), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}

	if err := Models.DB.Save(&client).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, client)
}
