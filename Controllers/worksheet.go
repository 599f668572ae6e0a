package Controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gweakliem/crane-beta/FirebaseMessaging"
	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/Notifications"
	"github.com/gweakliem/crane-beta/SSE"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

var sendWorksheetNotification = Notifications.SendWorksheetNotification

// FetchWorksheetTemplates lists all templates for the admin screen.
func FetchWorksheetTemplates(c *gin.Context) {
	var templates []Models.WorksheetTemplate
	if err := Models.DB.Order("created_at").Find(&templates).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// FetchActiveWorksheetTemplates is the therapist view, active templates only.
func FetchActiveWorksheetTemplates(c *gin.Context) {
	var templates []Models.WorksheetTemplate
	if err := Models.DB.Where("is_active = ?", true).Order("created_at").Find(&templates).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

type CreateTemplateInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Prompts     json.RawMessage `json:"prompts" binding:"required"`
}

func CreateWorksheetTemplate(c *gin.Context) {
	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var prompts []json.RawMessage
	if err := json.Unmarshal(input.Prompts, &prompts); err != nil || len(prompts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompts must be a non-empty array"})
		return
	}

	template := Models.WorksheetTemplate{
		Title:       input.Title,
		Description: input.Description,
		Prompts:     datatypes.JSON(input.Prompts),
		IsActive:    true,
	}

	if err := Models.DB.Create(&template).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	c.JSON(http.StatusOK, template)
}

type UpdateTemplateInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Prompts     json.RawMessage `json:"prompts"`
	IsActive    *bool           `json:"is_active"`
}

func UpdateWorksheetTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := Models.GetTemplateByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	if input.Title != nil {
		template.Title = *input.Title
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if len(input.Prompts) > 0 {
		var prompts []json.RawMessage
		if err := json.Unmarshal(input.Prompts, &prompts); err != nil || len(prompts) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prompts must be a non-empty array"})
			return
		}
		template.Prompts = datatypes.JSON(input.Prompts)
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := Models.DB.Save(&template).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}

	c.JSON(http.StatusOK, template)
}

type AssignWorksheetInput struct {
	TemplateID uint `json:"template_id" binding:"required"`
	ClientID   uint `json:"client_id" binding:"required"`
}

// AssignWorksheet creates an instance for an owned, active client and
// notifies the client. Notification failure is logged, never fails the
// assignment.
func AssignWorksheet(c *gin.Context) {
	var input AssignWorksheetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	therapistID := c.GetUint("userID")

	template, err := Models.GetTemplateByID(input.TemplateID)
	if err != nil || !template.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	client, err := Models.GetTherapistClient(therapistID, input.ClientID)
	if err != nil || !client.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	instance := Models.WorksheetInstance{
		TemplateID:  template.ID,
		ClientID:    client.ID,
		TherapistID: therapistID,
		Status:      Models.WorksheetAssigned,
		AssignedAt:  time.Now(),
	}

	if err := Models.DB.Create(&instance).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign worksheet"})
		return
	}

	if err := sendWorksheetNotification(client.Email, client.Phone, client.Name, template.Title); err != nil {
		log.Printf("Failed to notify client %d about worksheet %d: %v", client.ID, instance.ID, err)
	}

	instance.Template = template
	c.JSON(http.StatusOK, instance)
}

// FetchTherapistWorksheets lists instances owned by the therapist, optionally
// filtered to one client.
func FetchTherapistWorksheets(c *gin.Context) {
	query := Models.DB.Where("therapist_id = ?", c.GetUint("userID"))

	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var instances []Models.WorksheetInstance
	if err := query.Preload("Template").Order("assigned_at desc").Find(&instances).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worksheets"})
		return
	}

	c.JSON(http.StatusOK, instances)
}

type ReviewWorksheetInput struct {
	TherapistNotes string `json:"therapist_notes" binding:"required"`
}

// ReviewWorksheet closes the loop on a completed instance.
func ReviewWorksheet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Worksheet ID is required"})
		return
	}

	var input ReviewWorksheetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var instance Models.WorksheetInstance
	if err := Models.DB.Where("id = ? AND therapist_id = ?", id, c.GetUint("userID")).First(&instance).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worksheet not found"})
		return
	}

	if instance.Status != Models.WorksheetCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only completed worksheets can be reviewed"})
		return
	}

	now := time.Now()
	instance.TherapistNotes = input.TherapistNotes
	instance.Status = Models.WorksheetReviewed
	instance.ReviewedAt = &now

	if err := Models.DB.Save(&instance).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review worksheet"})
		return
	}

	c.JSON(http.StatusOK, instance)
}

// FetchClientWorksheets lists the authenticated client's own instances with
// the template payload they need to render prompts.
func FetchClientWorksheets(c *gin.Context) {
	var instances []Models.WorksheetInstance
	err := Models.DB.Where("client_id = ?", c.GetUint("clientID")).
		Preload("Template").Order("assigned_at desc").Find(&instances).Error
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worksheets"})
		return
	}

	c.JSON(http.StatusOK, instances)
}

type SubmitWorksheetInput struct {
	Responses json.RawMessage `json:"responses" binding:"required"`
}

// SubmitWorksheet records a client's responses, refreshes therapist
// dashboards over SSE, and pushes to the therapist's devices.
func SubmitWorksheet(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Worksheet ID is required"})
		return
	}

	var input SubmitWorksheetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var instance Models.WorksheetInstance
	if err := Models.DB.Where("id = ? AND client_id = ?", id, c.GetUint("clientID")).Preload("Template").First(&instance).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Worksheet not found"})
		return
	}

	if instance.Status != Models.WorksheetAssigned && instance.Status != Models.WorksheetInProgress {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Worksheet already submitted"})
		return
	}

	now := time.Now()
	instance.Responses = datatypes.JSON(input.Responses)
	instance.Status = Models.WorksheetCompleted
	instance.CompletedAt = &now

	if err := Models.DB.Save(&instance).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit worksheet"})
		return
	}

	SSE.Broadcaster.Broadcast("worksheets_updated")

	go notifyTherapistOfSubmission(instance)

	c.JSON(http.StatusOK, instance)
}

func notifyTherapistOfSubmission(instance Models.WorksheetInstance) {
	fcms, err := Models.GetFCMsByID(instance.TherapistID)
	if err != nil || len(fcms) == 0 {
		return
	}

	err = FirebaseMessaging.SendMessage(Models.NotificationRequest{
		Tokens: fcms,
		Title:  "Worksheet completed",
		Body:   instance.Template.Title + " has been completed by a client",
	})
	if err != nil {
		log.Printf("Failed to push worksheet completion for instance %d: %v", instance.ID, err)
	}
}
