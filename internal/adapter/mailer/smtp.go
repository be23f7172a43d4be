package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends notifications through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewSMTPMailer(cfg Config, log *logger.Logger) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
		logger: log.Named("SMTPMailer"),
	}
}

// AdCreatedMessage builds the notification sent after an ad is published.
func AdCreatedMessage(from, toEmail, adTitle string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your advertisement is published")
	m.SetBody("text/plain", fmt.Sprintf("Your advertisement '%s' has been published successfully.", adTitle))
	return m
}

func (s *SMTPMailer) SendAdCreatedEmail(toEmail, adTitle string) error {
	if err := s.dialer.DialAndSend(AdCreatedMessage(s.from, toEmail, adTitle)); err != nil {
		s.logger.Error("Failed to send ad created email", zap.String("to", toEmail), zap.Error(err))
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	s.logger.Info("Ad created email sent", zap.String("to", toEmail))
	return nil
}
