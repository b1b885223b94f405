package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"pricewatcher/internal/config"
)

// EmailNotifier delivers alerts over SMTP with STARTTLS. Gmail users need an
// app password, not the account password.
type EmailNotifier struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
	Logger    *zap.Logger
}

func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Sender:    cfg.Sender,
		Password:  cfg.Password,
		Recipient: cfg.Recipient,
		Logger:    logger,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, subject, body string) error {
	if n == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Host == "" || n.Sender == "" || n.Recipient == "" {
		return fmt.Errorf("email notifier not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.Sender)
	m.SetHeader("To", n.Recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.Host, n.Port, n.Sender, n.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if n.Logger != nil {
		n.Logger.Info("email sent", zap.String("to", n.Recipient), zap.String("subject", subject))
	}
	return nil
}
