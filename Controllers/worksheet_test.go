package Controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gweakliem/crane-beta/Constants"
	"github.com/gweakliem/crane-beta/Models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPractice creates a therapist with one active client and logs both in
// through the real OTP endpoints.
func seedPractice(t *testing.T, router *gin.Engine) (therapistCookie, clientCookie *http.Cookie, therapist Models.User, client Models.Client) {
	t.Helper()
	lastCode := stubDelivery(t)

	therapist = Models.User{Email: "t@example.com", Name: "Dana", Role: Models.RoleTherapist, IsActive: true}
	require.NoError(t, Models.DB.Create(&therapist).Error)
	client = Models.Client{TherapistID: therapist.ID, Name: "Alex", Email: "alex@example.com", Phone: "+15550001111", IsActive: true}
	require.NoError(t, Models.DB.Create(&client).Error)

	w := performJSON(router, "POST", "/api/auth/therapist/send-otp",
		map[string]string{"identifier": "t@example.com", "type": "email"})
	require.Equal(t, http.StatusOK, w.Code)
	w = performJSON(router, "POST", "/api/auth/therapist/verify-otp",
		map[string]string{"identifier": "t@example.com", "code": *lastCode})
	require.Equal(t, http.StatusOK, w.Code)
	therapistCookie = responseCookie(t, w, Constants.AuthCookie)

	w = performJSON(router, "POST", "/api/auth/client/send-otp",
		map[string]string{"identifier": "alex@example.com", "type": "email"})
	require.Equal(t, http.StatusOK, w.Code)
	w = performJSON(router, "POST", "/api/auth/client/verify-otp",
		map[string]string{"identifier": "alex@example.com", "code": *lastCode})
	require.Equal(t, http.StatusOK, w.Code)
	clientCookie = responseCookie(t, w, Constants.ClientAuthCookie)

	return therapistCookie, clientCookie, therapist, client
}

func seedTemplate(t *testing.T) Models.WorksheetTemplate {
	t.Helper()
	template := Models.WorksheetTemplate{
		Title:       "Thought Record",
		Description: "Daily CBT thought record",
		Prompts:     []byte(`["What happened?","What did you feel?"]`),
		IsActive:    true,
	}
	require.NoError(t, Models.DB.Create(&template).Error)
	return template
}

func stubWorksheetNotification(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := sendWorksheetNotification
	sendWorksheetNotification = func(email, phone, clientName, title string) error {
		calls++
		return nil
	}
	t.Cleanup(func() { sendWorksheetNotification = orig })
	return &calls
}

func TestWorksheetTemplateCRUD(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	lastCode := stubDelivery(t)

	performJSON(router, "POST", "/api/admin/bootstrap",
		map[string]string{"email": "admin@example.com", "name": "Root"})
	performJSON(router, "POST", "/api/auth/admin/send-otp",
		map[string]string{"identifier": "admin@example.com", "type": "email"})
	w := performJSON(router, "POST", "/api/auth/admin/verify-otp",
		map[string]string{"identifier": "admin@example.com", "code": *lastCode})
	adminCookie := responseCookie(t, w, Constants.AuthCookie)

	// Prompts must be a non-empty JSON array.
	w = performJSON(router, "POST", "/api/admin/worksheet-templates",
		map[string]interface{}{"title": "Empty", "prompts": []string{}}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(router, "POST", "/api/admin/worksheet-templates",
		map[string]interface{}{
			"title":       "Thought Record",
			"description": "Daily CBT thought record",
			"prompts":     []string{"What happened?", "What did you feel?"},
		}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var created Models.WorksheetTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsActive)

	// Deactivate via partial update.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/admin/worksheet-templates/%d", created.ID),
		map[string]interface{}{"is_active": false}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var updated Models.WorksheetTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Thought Record", updated.Title)

	w = performJSON(router, "PATCH", "/api/admin/worksheet-templates/9999",
		map[string]interface{}{"is_active": false}, adminCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTherapistOnlySeesActiveTemplates(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, _, _, _ := seedPractice(t, router)

	seedTemplate(t)
	retired := Models.WorksheetTemplate{Title: "Retired", Prompts: []byte(`["old"]`), IsActive: false}
	require.NoError(t, Models.DB.Create(&retired).Error)

	w := performJSON(router, "GET", "/api/therapist/worksheet-templates", nil, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var templates []Models.WorksheetTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "Thought Record", templates[0].Title)
}

func TestWorksheetLifecycle(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, clientCookie, _, client := seedPractice(t, router)
	template := seedTemplate(t)
	notified := stubWorksheetNotification(t)

	// Assign.
	w := performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": template.ID, "client_id": client.ID}, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *notified)

	var instance Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instance))
	assert.Equal(t, Models.WorksheetAssigned, instance.Status)

	// Review before completion is refused.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/therapist/worksheets/%d/review", instance.ID),
		map[string]string{"therapist_notes": "too early"}, therapistCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The client sees the assignment with its template.
	w = performJSON(router, "GET", "/api/client/worksheets", nil, clientCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, template.Title, mine[0].Template.Title)

	// Submit.
	w = performJSON(router, "POST", fmt.Sprintf("/api/client/worksheets/%d/submit", instance.ID),
		map[string]interface{}{"responses": []string{"A thing happened", "Anxious"}}, clientCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var submitted Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, Models.WorksheetCompleted, submitted.Status)
	require.NotNil(t, submitted.CompletedAt)

	// Double submit is refused.
	w = performJSON(router, "POST", fmt.Sprintf("/api/client/worksheets/%d/submit", instance.ID),
		map[string]interface{}{"responses": []string{"again"}}, clientCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Review.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/therapist/worksheets/%d/review", instance.ID),
		map[string]string{"therapist_notes": "Good progress"}, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var reviewed Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviewed))
	assert.Equal(t, Models.WorksheetReviewed, reviewed.Status)
	assert.Equal(t, "Good progress", reviewed.TherapistNotes)
	require.NotNil(t, reviewed.ReviewedAt)
}

func TestAssignWorksheetOwnershipAndActivity(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, _, therapist, _ := seedPractice(t, router)
	template := seedTemplate(t)
	stubWorksheetNotification(t)

	other := Models.User{Email: "other@example.com", Name: "Kim", Role: Models.RoleTherapist, IsActive: true}
	require.NoError(t, Models.DB.Create(&other).Error)
	foreign := Models.Client{TherapistID: other.ID, Name: "Sam", IsActive: true}
	require.NoError(t, Models.DB.Create(&foreign).Error)
	dormant := Models.Client{TherapistID: therapist.ID, Name: "Robin", IsActive: false}
	require.NoError(t, Models.DB.Create(&dormant).Error)

	// Another therapist's client reads as not found, not forbidden.
	w := performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": template.ID, "client_id": foreign.ID}, therapistCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": template.ID, "client_id": dormant.ID}, therapistCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	retired := Models.WorksheetTemplate{Title: "Retired", Prompts: []byte(`["old"]`), IsActive: false}
	require.NoError(t, Models.DB.Create(&retired).Error)
	w = performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": retired.ID, "client_id": foreign.ID}, therapistCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignWorksheetSurvivesNotificationFailure(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, _, _, client := seedPractice(t, router)
	template := seedTemplate(t)

	orig := sendWorksheetNotification
	sendWorksheetNotification = func(email, phone, clientName, title string) error {
		return fmt.Errorf("provider down")
	}
	t.Cleanup(func() { sendWorksheetNotification = orig })

	w := performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": template.ID, "client_id": client.ID}, therapistCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	Models.DB.Model(&Models.WorksheetInstance{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFetchTherapistWorksheetsClientFilter(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, _, therapist, client := seedPractice(t, router)
	template := seedTemplate(t)
	stubWorksheetNotification(t)

	second := Models.Client{TherapistID: therapist.ID, Name: "Sam", IsActive: true}
	require.NoError(t, Models.DB.Create(&second).Error)

	for _, id := range []uint{client.ID, second.ID} {
		w := performJSON(router, "POST", "/api/therapist/worksheets",
			map[string]uint{"template_id": template.ID, "client_id": id}, therapistCookie)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := performJSON(router, "GET", "/api/therapist/worksheets", nil, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var all []Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = performJSON(router, "GET", fmt.Sprintf("/api/therapist/worksheets?client_id=%d", second.ID), nil, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ClientID)
}

func TestSubmitWorksheetRequiresOwnership(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, clientCookie, therapist, _ := seedPractice(t, router)
	template := seedTemplate(t)
	stubWorksheetNotification(t)

	other := Models.Client{TherapistID: therapist.ID, Name: "Sam", IsActive: true}
	require.NoError(t, Models.DB.Create(&other).Error)

	w := performJSON(router, "POST", "/api/therapist/worksheets",
		map[string]uint{"template_id": template.ID, "client_id": other.ID}, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var instance Models.WorksheetInstance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &instance))

	// The logged-in client cannot submit another client's worksheet.
	w = performJSON(router, "POST", fmt.Sprintf("/api/client/worksheets/%d/submit", instance.ID),
		map[string]interface{}{"responses": []string{"not mine"}}, clientCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
