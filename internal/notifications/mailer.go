package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/knowledgeledger/lms-backend/pkg/config"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   string
}

// NewSendgridMailer builds the SendGrid-backed mailer. Returns nil when
// no API key is configured, which disables email delivery.
func NewSendgridMailer(cfg config.SendgridConfig) Mailer {
	if cfg.APIKey == "" {
		return nil
	}
	return &sendgridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   cfg.DefaultFrom,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email recipient required")
	}
	from := mail.NewEmail("", m.from)
	to := mail.NewEmail("", msg.To)
	html := msg.HTML
	if html == "" {
		html = msg.PlainText
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, html)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if response.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("email delivery failed with status %d", response.StatusCode))
	}
	return nil
}
