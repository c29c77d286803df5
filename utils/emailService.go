package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"lms/config"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" || password == "" {
		return fmt.Errorf("email sender not configured")
	}

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Learning Platform <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.footer { padding: 20px; text-align: center; color: #999999; font-size: 12px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">You are receiving this email because you have an account on our learning platform.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendCourseGrantedEmail notifies a user that course access was granted
func SendCourseGrantedEmail(email, name, courseName string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You now have access to <strong>%s</strong>.</p>
		<p>Head over to your dashboard to start learning.</p>`, name, courseName)
	return SendEmail([]string{email}, "Course access granted", getEmailTemplate("Course Unlocked", body))
}

// SendCertificationIssuedEmail congratulates a user on passing a course exam
func SendCertificationIssuedEmail(email, name, courseName, certificateNumber string) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations! You passed the exam for <strong>%s</strong>.</p>
		<p>Your certificate number is <strong>%s</strong>.</p>`, name, courseName, certificateNumber)
	return SendEmail([]string{email}, "Certification issued", getEmailTemplate("Congratulations!", body))
}

// SendAccessExpiryReminder warns a user that course access is about to expire
func SendAccessExpiryReminder(email, name, courseName string, daysLeft int) error {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your access to <strong>%s</strong> expires in %d day(s).</p>
		<p>Finish your remaining lessons before it does.</p>`, name, courseName, daysLeft)
	return SendEmail([]string{email}, "Course access expiring soon", getEmailTemplate("Access Expiring", body))
}
