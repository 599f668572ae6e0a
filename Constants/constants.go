package Constants

import "time"

const (
	AuthCookie       = "auth-token"
	ClientAuthCookie = "client-auth-token"

	UserSessionDuration   = 7 * 24 * time.Hour
	ClientSessionDuration = 24 * time.Hour
	OTPDuration           = 5 * time.Minute

	AdminLoginPage     = "/auth/admin"
	TherapistLoginPage = "/auth/therapist"
	ClientLoginPage    = "/auth/client"

	ResendService = "https://api.resend.com"
	TwilioService = "https://api.twilio.com"

	EmailFrom = "noreply@crane-beta.vercel.app"
)

// PublicPages bypass the page guard entirely, exact match only.
var PublicPages = []string{"/", AdminLoginPage, TherapistLoginPage, ClientLoginPage}
