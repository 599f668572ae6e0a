package main

import (
	"os"

	"github.com/gweakliem/crane-beta/CronJobs"
	"github.com/gweakliem/crane-beta/FirebaseMessaging"
	"github.com/gweakliem/crane-beta/Middleware"
	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/Routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	Models.ConnectDataBase()
	FirebaseMessaging.Setup()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://crane-beta.vercel.app", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true, // Allow cookies
	},
	))
	router.Use(Middleware.PageGuard())
	Routes.ConfigRoutes(router)

	reminderService := CronJobs.NewWorksheetReminder(Models.DB)
	reminderService.StartReminderCron()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3005"
	}
	router.Run(":" + port)
}
