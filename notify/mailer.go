package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const sendTimeout = 10 * time.Second

type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// Mailer sends the publication notification over SMTP with implicit TLS.
type Mailer struct {
	config MailerConfig
}

func NewMailer(config MailerConfig) *Mailer {
	return &Mailer{config: config}
}

// Send delivers the "new treat" notification for a published recipe. The
// dial and the delivery share one bounded timeout so a slow relay cannot
// hold on to the goroutine that fired it.
func (m *Mailer) Send(ctx context.Context, recipeName string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.config.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject("New treat added!")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("%s is now on treats.", recipeName))

	client, err := mail.NewClient(m.config.Host,
		mail.WithPort(m.config.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.User),
		mail.WithPassword(m.config.Password),
		mail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
