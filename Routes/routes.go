package Routes

import (
	"github.com/gweakliem/crane-beta/Controllers"
	"github.com/gweakliem/crane-beta/Middleware"
	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/SSE"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		auth.POST("/admin/send-otp", Controllers.AdminSendOTP)
		auth.POST("/admin/verify-otp", Controllers.AdminVerifyOTP)
		auth.POST("/therapist/send-otp", Controllers.TherapistSendOTP)
		auth.POST("/therapist/verify-otp", Controllers.TherapistVerifyOTP)
		auth.POST("/therapist/login", Controllers.TherapistLogin)
		auth.POST("/client/send-otp", Controllers.ClientSendOTP)
		auth.POST("/client/verify-otp", Controllers.ClientVerifyOTP)
		auth.POST("/verify-session", Controllers.VerifySession)
		auth.POST("/logout", Controllers.Logout)
		auth.GET("/me", Controllers.CurrentUser)
	}

	router.POST("/api/admin/bootstrap", Controllers.Bootstrap)

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(Middleware.RequireUser(Models.RoleAdmin))
	{
		admin.GET("/therapists", Controllers.GetTherapists)
		admin.POST("/therapists", Controllers.CreateTherapist)
		admin.PATCH("/therapists/:id", Controllers.UpdateTherapist)
		admin.GET("/stats", Controllers.GetAdminStats)
		admin.GET("/worksheet-templates", Controllers.FetchWorksheetTemplates)
		admin.POST("/worksheet-templates", Controllers.CreateWorksheetTemplate)
		admin.PATCH("/worksheet-templates/:id", Controllers.UpdateWorksheetTemplate)
		admin.GET("/export/worksheets", Controllers.ExportWorksheetsExcel)
	}

	// Therapist routes
	therapist := router.Group("/api/therapist")
	therapist.Use(Middleware.RequireUser(Models.RoleTherapist))
	{
		therapist.GET("/clients", Controllers.FetchClients)
		therapist.POST("/clients", Controllers.CreateClient)
		therapist.PATCH("/clients/:id", Controllers.UpdateClient)
		therapist.GET("/worksheet-templates", Controllers.FetchActiveWorksheetTemplates)
		therapist.GET("/worksheets", Controllers.FetchTherapistWorksheets)
		therapist.POST("/worksheets", Controllers.AssignWorksheet)
		therapist.PATCH("/worksheets/:id/review", Controllers.ReviewWorksheet)
	}

	// Client routes
	client := router.Group("/api/client")
	client.Use(Middleware.RequireClient())
	{
		client.GET("/me", Controllers.ClientMe)
		client.GET("/worksheets", Controllers.FetchClientWorksheets)
		client.POST("/worksheets/:id/submit", Controllers.SubmitWorksheet)
	}

	// Shared authenticated routes
	protected := router.Group("/api/protected")
	protected.Use(Middleware.RequireAnyUser())
	{
		protected.POST("/SaveFcmToken", Controllers.SaveFcmToken)
		protected.GET("/RequestSSE", SSE.RequestSSE)
	}

	// Static file serving
	router.Static("/Web", "./Static")
}
