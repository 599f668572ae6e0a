package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/gweakliem/crane-beta/Models"
	"github.com/gweakliem/crane-beta/Notifications"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Assignments still untouched after this long get one reminder.
const reminderAfter = 48 * time.Hour

// WorksheetReminder handles sending reminder messages for stale assignments
type WorksheetReminder struct {
	DB *gorm.DB
}

func NewWorksheetReminder(db *gorm.DB) *WorksheetReminder {
	return &WorksheetReminder{
		DB: db,
	}
}

// StartReminderCron starts the cron job to check for stale worksheets and send reminders
func (wr *WorksheetReminder) StartReminderCron() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(15).Minutes().Do(func() {
		log.Println("Running worksheet reminder check...")
		if err := wr.SendWorksheetReminders(); err != nil {
			log.Printf("Error sending worksheet reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Worksheet reminder cron job started")

	return scheduler
}

func (wr *WorksheetReminder) SendWorksheetReminders() error {
	cutoff := time.Now().Add(-reminderAfter)

	var instances []Models.WorksheetInstance

	result := wr.DB.Preload("Template").
		Where("status = ? AND reminder_sent = ? AND assigned_at < ?",
			Models.WorksheetAssigned, false, cutoff).
		Find(&instances)

	if result.Error != nil {
		return fmt.Errorf("failed to query stale worksheets: %w", result.Error)
	}

	for _, instance := range instances {
		var client Models.Client
		if err := wr.DB.First(&client, instance.ClientID).Error; err != nil {
			log.Printf("Failed to find client for worksheet ID %d: %v", instance.ID, err)
			continue
		}

		if !client.IsActive || (client.Email == "" && client.Phone == "") {
			continue
		}

		if err := Notifications.SendWorksheetReminder(client.Email, client.Phone, client.Name, instance.Template.Title); err != nil {
			log.Printf("Failed to send reminder to client %s: %v", client.Name, err)
			continue
		}

		if err := wr.DB.Model(&Models.WorksheetInstance{}).Where("id = ?", instance.ID).Update("reminder_sent", true).Error; err != nil {
			log.Printf("Failed to mark reminder sent for worksheet ID %d: %v", instance.ID, err)
			continue
		}

		log.Printf("Reminder sent to %s for worksheet %q", client.Name, instance.Template.Title)
	}

	return nil
}
