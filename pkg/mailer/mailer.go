package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one transactional email. Template names one of the bodies
// registered in templates.go; Data feeds it.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]interface{}
}

// Mailer sends best-effort transactional email. Failures are surfaced to
// the caller, never retried here.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridMailer struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from, fromName string) Mailer {
	return &sendGridMailer{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	tmpl, ok := bodies[msg.Template]
	if !ok {
		return fmt.Errorf("unknown mail template: %s", msg.Template)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, msg.Data); err != nil {
		return fmt.Errorf("failed to render mail template %s: %w", msg.Template, err)
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		msg.Subject,
		mail.NewEmail("", msg.To),
		"",
		wrap(msg.Subject, body.String()),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d for mail to %s", resp.StatusCode, msg.To)
	}

	return nil
}
