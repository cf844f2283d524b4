package utils

import (
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"

	"github.com/craftwl/whitelist-server/config"
)

// SendMail delivers one message through Resend. Callers on the request path
// should use SendMailAsync instead.
func SendMail(to, subject, html string) error {
	apiKey := config.Settings.Get(config.KeyMailAPIKey)
	if apiKey == "" {
		return fmt.Errorf("mail: %s is not configured", config.KeyMailAPIKey)
	}

	client := resend.NewClient(apiKey)
	params := &resend.SendEmailRequest{
		From:    config.Settings.Get(config.KeyMailFrom),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	_, err := client.Emails.Send(params)
	return err
}

// SendMailAsync fires off delivery on its own goroutine. Best effort: failures
// are logged and never reported back to the request.
func SendMailAsync(to, subject, html string) {
	go func() {
		if err := SendMail(to, subject, html); err != nil {
			log.Printf("mail: send to %s failed: %v", to, err)
		}
	}()
}

func SendResetPasswordMail(to, token string) {
	url := config.Settings.Get(config.KeyResetPasswordURL) + token
	html := fmt.Sprintf(
		`<p>A password reset was requested for your account.</p><p><a href="%s">Reset password</a></p><p>The link expires in one hour. Ignore this mail if you did not ask for it.</p>`,
		url,
	)
	SendMailAsync(to, "Reset your password", html)
}

func SendActivationMail(to, token string) {
	url := config.Settings.Get(config.KeyActivationURL) + token
	html := fmt.Sprintf(
		`<p>Welcome! Activate your account by opening the link below.</p><p><a href="%s">Activate account</a></p><p>The link expires in 24 hours.</p>`,
		url,
	)
	SendMailAsync(to, "Activate your account", html)
}
