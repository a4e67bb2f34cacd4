package mailservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/companyblog/internal/common"
	"golang.org/x/exp/rand"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

// NewMailService creates the activation mail consumer. activationURL is the page users open to activate
// their account; the token is appended as the "token" query parameter.
func NewMailService(mb common.MessageConsumer, m Mailer, activationURL string, logger *slog.Logger) *MailService {
	return &MailService{
		mb:            mb,
		m:             m,
		logger:        logger,
		activationURL: activationURL,
		maxRetries:    defaultMaxRetries,
		baseDelay:     defaultBaseDelay,
	}
}

// Start consumes user.created events until ctx is cancelled or Close is called.
func (s *MailService) Start(ctx context.Context) error {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		return fmt.Errorf("could not consume %s: %w", common.UserCreatedKey, err)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handle(ctx, msg)
			case <-ctx.Done():
				s.logger.Info("stopping activation mail consumer")
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handle(ctx context.Context, msg amqp.Delivery) {
	err := s.process(ctx, msg.Body)
	if err != nil {
		s.logger.Error("could not send activation email", slog.String("error", err.Error()))
	}

	// undeliverable messages are dropped instead of requeued
	if msg.Acknowledger != nil {
		_ = msg.Ack(false)
	}
}

func (s *MailService) process(ctx context.Context, body []byte) error {
	var event userCreatedEvent

	err := json.Unmarshal(body, &event)
	if err != nil {
		return fmt.Errorf("could not unmarshal message: %w", err)
	}

	if event.Email == "" || event.Token == "" {
		return errors.New("message is missing email or token")
	}

	data := activationData{
		ActivationToken: event.Token,
		ActivationLink:  s.activationLink(event.Token),
	}

	return s.deliver(ctx, event.Email, data)
}

// deliver retries with exponential backoff and full jitter.
func (s *MailService) deliver(ctx context.Context, email string, data activationData) error {
	var err error

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = s.m.Send(email, data, activationTemplate)
		if err == nil {
			s.logger.Info("activation email sent", slog.String("email", email))
			return nil
		}

		if attempt == s.maxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying activation email", slog.String("email", email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("giving up on %s after %d attempts: %w", email, s.maxRetries, err)
}

func (s *MailService) activationLink(token string) string {
	if s.activationURL == "" {
		return ""
	}

	u, err := url.Parse(s.activationURL)
	if err != nil {
		return ""
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String()
}

// Close stops the consumer and waits for the message in flight.
func (s *MailService) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
