package Controllers

import (
	"log"
	"net/http"

	"github.com/gweakliem/crane-beta/Constants"
	"github.com/gweakliem/crane-beta/Middleware"
	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/Notifications"
	"github.com/gweakliem/crane-beta/Utils/Token"

	"github.com/gin-gonic/gin"
)

// Delivery hooks, swappable in tests.
var (
	sendOTPEmail = Notifications.SendOTPEmail
	sendOTPSMS   = Notifications.SendOTPSMS
)

type SendOTPInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=email sms"`
}

type VerifyOTPInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required,len=6"`
}

func setAuthCookie(c *gin.Context, name, token string, maxAge int) {
	c.SetCookie(name, token, maxAge, "/", "", Middleware.SecureCookies(), true)
}

// issueOTP persists a code and dispatches it. The row deliberately stays
// behind when delivery fails; see DESIGN.md.
func issueOTP(c *gin.Context, input SendOTPInput, subject Models.Subject) {
	otp, err := Models.CreateOTP(input.Identifier, Models.Channel(input.Type), subject)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create OTP"})
		return
	}

	if input.Type == string(Models.ChannelEmail) {
		err = sendOTPEmail(input.Identifier, otp.Code, subject == Models.SubjectAdmin)
	} else {
		err = sendOTPSMS(input.Identifier, otp.Code)
	}

	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func AdminSendOTP(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Email codes only go out to registered admins.
	if input.Type == string(Models.ChannelEmail) {
		if _, err := Models.GetUserByEmailAndRole(input.Identifier, Models.RoleAdmin); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
	}

	issueOTP(c, input, Models.SubjectAdmin)
}

func TherapistSendOTP(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Type == string(Models.ChannelEmail) {
		user, err := Models.GetUserByEmailAndRole(input.Identifier, Models.RoleTherapist)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}
	}

	issueOTP(c, input, Models.SubjectTherapist)
}

// ClientSendOTP skips the pre-registration check; an unknown identifier only
// fails at verification time.
func ClientSendOTP(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueOTP(c, input, Models.SubjectClient)
}

func verifyUserOTP(c *gin.Context, role Models.Role, subject Models.Subject) {
	var input VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.ConsumeOTP(input.Identifier, input.Code, subject); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	user, err := Models.GetUserByEmailAndRole(input.Identifier, role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if role == Models.RoleTherapist && !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	session := Token.NewUserSession(Token.SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})

	token, err := Token.GenerateToken(session)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	setAuthCookie(c, Constants.AuthCookie, token, int(Constants.UserSessionDuration.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func AdminVerifyOTP(c *gin.Context) {
	verifyUserOTP(c, Models.RoleAdmin, Models.SubjectAdmin)
}

func TherapistVerifyOTP(c *gin.Context) {
	verifyUserOTP(c, Models.RoleTherapist, Models.SubjectTherapist)
}

func ClientVerifyOTP(c *gin.Context) {
	var input VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.ConsumeOTP(input.Identifier, input.Code, Models.SubjectClient); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	client, err := Models.GetActiveClientByIdentifier(input.Identifier)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	session := Token.NewClientSession(Token.SessionClient{
		ID:          client.ID,
		TherapistID: client.TherapistID,
		Name:        client.Name,
	})

	token, err := Token.GenerateToken(session)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	setAuthCookie(c, Constants.ClientAuthCookie, token, int(Constants.ClientSessionDuration.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"client": gin.H{
			"id":           client.ID,
			"name":         client.Name,
			"therapist_id": client.TherapistID,
		},
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TherapistLogin is the only password login; admins and clients are OTP-only.
func TherapistLogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := Models.LoginCheck(input.Email, input.Password)
	if err != nil {
		if err == Models.ErrUserInactive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	session := Token.NewUserSession(Token.SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})

	token, err := Token.GenerateToken(session)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	setAuthCookie(c, Constants.AuthCookie, token, int(Constants.UserSessionDuration.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

type VerifySessionInput struct {
	Token string `json:"token" binding:"required"`
	Type  string `json:"type" binding:"omitempty,oneof=user client"`
}

// VerifySession is the server-side check the page guard composes: decode,
// re-check business expiry, and require the sub-payload matching the type.
func VerifySession(c *gin.Context) {
	var input VerifySessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Type == "" {
		input.Type = "user"
	}

	session := Token.VerifyToken(input.Token)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	if !session.IsValid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Expired session"})
		return
	}

	if input.Type == "user" && session.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user session"})
		return
	}
	if input.Type == "client" && session.Client == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid client session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": session})
}

// Logout clears both cookies; the credential spaces are independent, so both
// go regardless of which one was set.
func Logout(c *gin.Context) {
	setAuthCookie(c, Constants.AuthCookie, "", 0)
	setAuthCookie(c, Constants.ClientAuthCookie, "", 0)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func CurrentUser(c *gin.Context) {
	raw, err := c.Cookie(Constants.AuthCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session := Token.VerifyToken(raw)
	if session == nil || !session.IsValid() || session.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": session.User})
}

func ClientMe(c *gin.Context) {
	raw, err := c.Cookie(Constants.ClientAuthCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session := Token.VerifyToken(raw)
	if session == nil || !session.IsValid() || session.Client == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "client": session.Client})
}

type BootstrapInput struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// Bootstrap creates the first admin account. Admins are OTP-only and never
// carry a password hash. Idempotent on email.
func Bootstrap(c *gin.Context) {
	var input BootstrapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := Models.UserEmailExists(input.Email)
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin user"})
		return
	}
	if exists {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin already exists"})
		return
	}

	admin := Models.User{
		Email:    input.Email,
		Name:     input.Name,
		Role:     Models.RoleAdmin,
		IsActive: true,
	}
	if _, err := admin.SaveUser(); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin user created successfully",
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

func SaveFcmToken(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	deviceToken := Models.DeviceToken{UserID: userID, Value: input.Token}
	if err := Models.DB.Save(&deviceToken).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
