package mailservice

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sushihentaime/companyblog/internal/common"
)

const activationTemplate = "activation_email.html"

// MailService turns user.created events into activation emails.
type MailService struct {
	mb            common.MessageConsumer
	m             Mailer
	logger        *slog.Logger
	activationURL string
	maxRetries    int
	baseDelay     time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	Send(recipient string, data any, templateFile string) error
}

type Template struct {
	set map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// userCreatedEvent is the body published by the user service.
type userCreatedEvent struct {
	Email string
	Token string
}

// activationData is rendered by the activation email template.
type activationData struct {
	ActivationToken string
	ActivationLink  string
}
