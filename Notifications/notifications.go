package Notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gweakliem/crane-beta/Constants"
)

// Base URLs are variables so tests can point them at a stub server.
var (
	ResendService = Constants.ResendService
	TwilioService = Constants.TwilioService
)

// SendOTPEmail delivers a login code through the Resend API.
func SendOTPEmail(to, code string, isAdmin bool) error {
	subject := "Your Login Code"
	if isAdmin {
		subject = "Admin Login Code"
	}

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Your Login Code</h2>
			<p>Enter this code to log in:</p>
			<div style="background: #f5f5f5; padding: 20px; text-align: center; font-size: 24px; font-weight: bold; margin: 20px 0;">%s</div>
			<p>This code will expire in 5 minutes.</p>
			<p>If you didn't request this code, please ignore this email.</p>
		</div>`, code)

	return sendEmail(to, subject, html)
}

// SendOTPSMS delivers a login code through Twilio.
func SendOTPSMS(to, code string) error {
	message := fmt.Sprintf("Your login code is: %s. This code expires in 5 minutes.", code)
	return sendSMS(to, message)
}

// SendWorksheetNotification tells a client about a new assignment on whatever
// contact channels they have.
func SendWorksheetNotification(email, phone, clientName, worksheetTitle string) error {
	if email != "" {
		html := fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2>New Worksheet Assignment</h2>
				<p>Hi %s,</p>
				<p>You have been assigned a new worksheet: <strong>%s</strong></p>
				<p>Please log in to your dashboard to complete it.</p>
				<p>Thank you!</p>
			</div>`, clientName, worksheetTitle)
		if err := sendEmail(email, "New Worksheet Assignment", html); err != nil {
			return err
		}
	}

	if phone != "" {
		message := fmt.Sprintf("Hi %s, you have a new worksheet assignment: %q. Please log in to complete it.", clientName, worksheetTitle)
		if err := sendSMS(phone, message); err != nil {
			return err
		}
	}

	return nil
}

// SendWorksheetReminder nudges a client about a stale assignment.
func SendWorksheetReminder(email, phone, clientName, worksheetTitle string) error {
	if email != "" {
		html := fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2>Worksheet Reminder</h2>
				<p>Hi %s,</p>
				<p>Your worksheet <strong>%s</strong> is still waiting for you.</p>
				<p>Please log in to your dashboard to complete it.</p>
			</div>`, clientName, worksheetTitle)
		return sendEmail(email, "Worksheet Reminder", html)
	}
	if phone != "" {
		message := fmt.Sprintf("Hi %s, a reminder that your worksheet %q is still waiting. Please log in to complete it.", clientName, worksheetTitle)
		return sendSMS(phone, message)
	}
	return nil
}

func sendEmail(to, subject, html string) error {
	client := &http.Client{}

	payload, err := json.Marshal(map[string]interface{}{
		"from":    Constants.EmailFrom,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", ResendService+"/emails", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+os.Getenv("RESEND_API_KEY"))

	res, err := client.Do(req)
	if err != nil {
		log.Println(err)
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 300 {
		log.Printf("Resend request failed for %s: %s", to, string(body))
		return fmt.Errorf("email delivery failed: %s", res.Status)
	}
	return nil
}

func sendSMS(to, message string) error {
	client := &http.Client{}

	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", os.Getenv("TWILIO_PHONE_NUMBER"))
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", TwilioService, accountSid)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(accountSid, authToken)

	res, err := client.Do(req)
	if err != nil {
		log.Println(err)
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 300 {
		log.Printf("Twilio request failed for %s: %s", to, string(body))
		return fmt.Errorf("SMS delivery failed: %s", res.Status)
	}
	return nil
}
