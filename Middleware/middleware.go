package Middleware

import (
	"net/http"
	"strings"

	"github.com/gweakliem/crane-beta/Constants"
	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/Utils/Token"

	"github.com/gin-gonic/gin"
)

// verifySession decodes and validity-checks a raw token. A panic anywhere in
// verification is treated as an invalid session, never surfaced.
func verifySession(raw string) (session *Token.AuthSession) {
	defer func() {
		if r := recover(); r != nil {
			session = nil
		}
	}()

	session = Token.VerifyToken(raw)
	if session == nil || !session.IsValid() {
		return nil
	}
	return session
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", SecureCookies(), true)
}

// SecureCookies mirrors the production switch for the Secure cookie attribute.
func SecureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

// RequireUser guards API routes behind the user cookie and an exact role.
// Missing or invalid session is 401; a valid session with the wrong role is
// 403.
func RequireUser(role Models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(Constants.AuthCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		session := verifySession(raw)
		if session == nil || session.User == nil {
			clearCookie(c, Constants.AuthCookie)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if session.User.Role != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Set("userID", session.User.ID)
		c.Set("userRole", session.User.Role)
		c.Next()
	}
}

// RequireAnyUser admits any valid admin or therapist session.
func RequireAnyUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(Constants.AuthCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		session := verifySession(raw)
		if session == nil || session.User == nil {
			clearCookie(c, Constants.AuthCookie)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set("userID", session.User.ID)
		c.Set("userRole", session.User.Role)
		c.Next()
	}
}

// RequireClient guards API routes behind the client cookie. The client and
// user credential spaces are fully independent.
func RequireClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(Constants.ClientAuthCookie)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		session := verifySession(raw)
		if session == nil || session.Client == nil {
			clearCookie(c, Constants.ClientAuthCookie)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set("clientID", session.Client.ID)
		c.Set("therapistID", session.Client.TherapistID)
		c.Next()
	}
}

// PageGuard enforces role access on page navigations by path prefix. Public
// pages bypass every check; /admin* and /therapist* read the user cookie,
// /client* reads the client cookie. A missing or invalid session redirects to
// the role's login page, a role mismatch is an access-denied failure, not a
// re-login prompt. Every navigation re-verifies; nothing is cached.
func PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, public := range Constants.PublicPages {
			if path == public {
				c.Next()
				return
			}
		}

		switch {
		case strings.HasPrefix(path, "/admin"), strings.HasPrefix(path, "/therapist"):
			loginPage := Constants.AdminLoginPage
			requiredRole := Models.RoleAdmin
			if strings.HasPrefix(path, "/therapist") {
				loginPage = Constants.TherapistLoginPage
				requiredRole = Models.RoleTherapist
			}

			raw, err := c.Cookie(Constants.AuthCookie)
			if err != nil || raw == "" {
				c.Redirect(http.StatusFound, loginPage)
				c.Abort()
				return
			}

			session := verifySession(raw)
			if session == nil || session.User == nil {
				clearCookie(c, Constants.AuthCookie)
				c.Redirect(http.StatusFound, loginPage)
				c.Abort()
				return
			}

			if session.User.Role != string(requiredRole) {
				c.String(http.StatusForbidden, "Access denied")
				c.Abort()
				return
			}

		case strings.HasPrefix(path, "/client"):
			raw, err := c.Cookie(Constants.ClientAuthCookie)
			if err != nil || raw == "" {
				c.Redirect(http.StatusFound, Constants.ClientLoginPage)
				c.Abort()
				return
			}

			session := verifySession(raw)
			if session == nil || session.Client == nil {
				clearCookie(c, Constants.ClientAuthCookie)
				c.Redirect(http.StatusFound, Constants.ClientLoginPage)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
