package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendAnalysisReady(toEmail, fileName string, overallScore int) error
	SendAnalysisFailed(toEmail, fileName, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendAnalysisReady(toEmail, fileName string, overallScore int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Contract Analysis is Ready")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Analysis Complete</h2>
			<p>The review of <strong>%s</strong> has finished.</p>
			<p>Overall score:</p>
			<h1 style="color: #4CAF50;">%d / 100</h1>
			<p><a href="%s/contracts">Open your dashboard</a> to read the full report and chat with the assistant.</p>
		</div>
	`, fileName, overallScore, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send analysis notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Analysis notification sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendAnalysisFailed(toEmail, fileName, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Contract Analysis Failed")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Analysis Failed</h2>
			<p>We could not analyze <strong>%s</strong>.</p>
			<p>Reason: %s</p>
			<p>You can retry the analysis from <a href="%s/contracts">your dashboard</a>.</p>
		</div>
	`, fileName, reason, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Failure notification sent to %s\n", toEmail)
	return nil
}
