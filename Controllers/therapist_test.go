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

func adminLogin(t *testing.T, router *gin.Engine) *http.Cookie {
	t.Helper()
	lastCode := stubDelivery(t)

	performJSON(router, "POST", "/api/admin/bootstrap",
		map[string]string{"email": "admin@example.com", "name": "Root"})
	performJSON(router, "POST", "/api/auth/admin/send-otp",
		map[string]string{"identifier": "admin@example.com", "type": "email"})
	w := performJSON(router, "POST", "/api/auth/admin/verify-otp",
		map[string]string{"identifier": "admin@example.com", "code": *lastCode})
	require.Equal(t, http.StatusOK, w.Code)
	return responseCookie(t, w, Constants.AuthCookie)
}

func TestTherapistCRUD(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	adminCookie := adminLogin(t, router)

	w := performJSON(router, "POST", "/api/admin/therapists",
		map[string]string{"name": "Dana", "email": "dana@example.com"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		IsActive bool   `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsActive)

	// Duplicate email.
	w = performJSON(router, "POST", "/api/admin/therapists",
		map[string]string{"name": "Dana Again", "email": "dana@example.com"}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already exists")

	// No password given means OTP-only.
	var stored Models.User
	require.NoError(t, Models.DB.First(&stored, created.ID).Error)
	assert.Empty(t, stored.PasswordHash)

	// Deactivate.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/admin/therapists/%d", created.ID),
		map[string]interface{}{"is_active": false}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, Models.DB.First(&stored, created.ID).Error)
	assert.False(t, stored.IsActive)

	// A frozen therapist cannot log in even with a later-set password.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/admin/therapists/%d", created.ID),
		map[string]interface{}{"password": "secret-pass"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(router, "POST", "/api/auth/therapist/login",
		map[string]string{"email": "dana@example.com", "password": "secret-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performJSON(router, "PATCH", "/api/admin/therapists/9999",
		map[string]interface{}{"is_active": false}, adminCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTherapistsIncludesClientCount(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	adminCookie := adminLogin(t, router)

	busy := Models.User{Email: "busy@example.com", Name: "Dana", Role: Models.RoleTherapist, IsActive: true}
	idle := Models.User{Email: "idle@example.com", Name: "Kim", Role: Models.RoleTherapist, IsActive: true}
	require.NoError(t, Models.DB.Create(&busy).Error)
	require.NoError(t, Models.DB.Create(&idle).Error)

	for i := 0; i < 3; i++ {
		client := Models.Client{TherapistID: busy.ID, Name: fmt.Sprintf("Client %d", i), IsActive: true}
		require.NoError(t, Models.DB.Create(&client).Error)
	}

	// Soft-deleted clients drop out of the count.
	gone := Models.Client{TherapistID: busy.ID, Name: "Gone", IsActive: true}
	require.NoError(t, Models.DB.Create(&gone).Error)
	require.NoError(t, Models.DB.Delete(&gone).Error)

	w := performJSON(router, "GET", "/api/admin/therapists", nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []TherapistRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Email] = row.ClientCount
	}
	assert.Equal(t, int64(3), counts["busy@example.com"])
	assert.Equal(t, int64(0), counts["idle@example.com"])
}

func TestAdminStats(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	adminCookie := adminLogin(t, router)

	therapist := Models.User{Email: "t@example.com", Name: "Dana", Role: Models.RoleTherapist, IsActive: true}
	require.NoError(t, Models.DB.Create(&therapist).Error)

	active := Models.Client{TherapistID: therapist.ID, Name: "Alex", IsActive: true}
	dormant := Models.Client{TherapistID: therapist.ID, Name: "Sam", IsActive: false}
	require.NoError(t, Models.DB.Create(&active).Error)
	require.NoError(t, Models.DB.Create(&dormant).Error)

	template := seedTemplate(t)
	pending := Models.WorksheetInstance{
		TemplateID: template.ID, ClientID: active.ID, TherapistID: therapist.ID,
		Status: Models.WorksheetAssigned,
	}
	done := Models.WorksheetInstance{
		TemplateID: template.ID, ClientID: active.ID, TherapistID: therapist.ID,
		Status: Models.WorksheetCompleted,
	}
	require.NoError(t, Models.DB.Create(&pending).Error)
	require.NoError(t, Models.DB.Create(&done).Error)

	w := performJSON(router, "GET", "/api/admin/stats", nil, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalTherapists   int64 `json:"totalTherapists"`
		ActiveClients     int64 `json:"activeClients"`
		PendingWorksheets int64 `json:"pendingWorksheets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalTherapists)
	assert.Equal(t, int64(1), stats.ActiveClients)
	assert.Equal(t, int64(1), stats.PendingWorksheets)
}

func TestClientCRUDIsTherapistScoped(t *testing.T) {
	setupTestDB(t)
	router := newRouter()
	therapistCookie, _, _, client := seedPractice(t, router)

	w := performJSON(router, "POST", "/api/therapist/clients",
		map[string]string{"name": "Sam", "email": "sam@example.com", "phone": "+15550002222"}, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var created Models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsActive)

	w = performJSON(router, "GET", "/api/therapist/clients", nil, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []Models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Len(t, mine, 2)

	// Another therapist sees none of them and cannot touch them.
	otherCookie := func() *http.Cookie {
		other := Models.User{Email: "other@example.com", Name: "Kim", Role: Models.RoleTherapist, IsActive: true}
		require.NoError(t, other.SetPassword("other-pass"))
		require.NoError(t, Models.DB.Create(&other).Error)
		w := performJSON(router, "POST", "/api/auth/therapist/login",
			map[string]string{"email": "other@example.com", "password": "other-pass"})
		require.Equal(t, http.StatusOK, w.Code)
		return responseCookie(t, w, Constants.AuthCookie)
	}()

	w = performJSON(router, "GET", "/api/therapist/clients", nil, otherCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var theirs []Models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &theirs))
	assert.Empty(t, theirs)

	w = performJSON(router, "PATCH", fmt.Sprintf("/api/therapist/clients/%d", client.ID),
		map[string]interface{}{"name": "Hijacked"}, otherCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The owner can update.
	w = performJSON(router, "PATCH", fmt.Sprintf("/api/therapist/clients/%d", client.ID),
		map[string]interface{}{"is_active": false}, therapistCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var updated Models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.IsActive)

	// Deactivated clients cannot start a new OTP session.
	lastCode := stubDelivery(t)
	w = performJSON(router, "POST", "/api/auth/client/send-otp",
		map[string]string{"identifier": "alex@example.com", "type": "email"})
	require.Equal(t, http.StatusOK, w.Code)
	w = performJSON(router, "POST", "/api/auth/client/verify-otp",
		map[string]string{"identifier": "alex@example.com", "code": *lastCode})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
