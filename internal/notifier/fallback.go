package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"studymail/internal/models"
	"studymail/internal/providers"
	"studymail/internal/structures"
	"time"
)

var ErrNoTransport = errors.New("no mail transport configured")

type transport struct {
	name     string
	notifier NotifierInterface
}

// FallbackNotifier tries each configured transport in order until one accepts
// the message.
type FallbackNotifier struct {
	transports []transport
	logger     providers.Logger
}

func (f *FallbackNotifier) Add(name string, n NotifierInterface) {
	f.transports = append(f.transports, transport{name: name, notifier: n})
}

func (f *FallbackNotifier) Transports() []string {
	names := make([]string, 0, len(f.transports))
	for _, t := range f.transports {
		names = append(names, t.name)
	}
	return names
}

func (f *FallbackNotifier) Send(ctx context.Context, req models.NotificationRequest) error {
	if len(f.transports) == 0 {
		return fmt.Errorf("%w: %w", models.ErrDelivery, ErrNoTransport)
	}

	var errs []error
	for i, t := range f.transports {
		err := f.sendVia(ctx, t, req, len(f.transports)-i)
		if err == nil {
			return nil
		}
		f.logger.Warnf(providers.TypeMail, "Mail via %s failed for %s: %s", t.name, req.Date, err)
		errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %w", models.ErrDelivery, errors.Join(errs...))
}

// sendVia gives the transport an even share of what is left of the dispatch
// deadline, so a stalled transport cannot starve the ones after it.
func (f *FallbackNotifier) sendVia(ctx context.Context, t transport, req models.NotificationRequest, left int) error {
	deadline, ok := ctx.Deadline()
	if !ok || left <= 1 {
		return t.notifier.Send(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, time.Until(deadline)/time.Duration(left))
	defer cancel()
	return t.notifier.Send(ctx, req)
}

// TimeoutNotifier bounds a whole dispatch, fallbacks included.
type TimeoutNotifier struct {
	inner   NotifierInterface
	timeout time.Duration
}

func NewTimeoutNotifier(inner NotifierInterface, timeout time.Duration) *TimeoutNotifier {
	return &TimeoutNotifier{inner: inner, timeout: timeout}
}

func (t *TimeoutNotifier) Send(ctx context.Context, req models.NotificationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	err := t.inner.Send(ctx, req)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out after %s: %w", models.ErrDelivery, t.timeout, err)
	}
	if errors.Is(err, models.ErrDelivery) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrDelivery, err)
}

// NewNotifier wires SendGrid first and SMTP as backup, whichever are configured,
// behind the dispatch timeout.
func NewNotifier(conf *structures.Config, logger providers.Logger) NotifierInterface {
	mail := conf.Mail
	chain := &FallbackNotifier{logger: logger}

	useSendGrid := mail.SendGridAPIKey != "" && mail.To != "" && mail.From != ""
	useSMTP := mail.SMTPUser != "" && mail.SMTPPassword != "" && mail.To != ""

	if useSendGrid {
		// with SMTP behind it, SendGrid gets half the budget
		clientTimeout := mail.Timeout
		if useSMTP {
			clientTimeout /= 2
		}
		client := &http.Client{Timeout: clientTimeout}
		chain.Add("sendgrid", NewSendGridNotifier(client, mail.SendGridURL, mail.SendGridAPIKey, mail.From, mail.To, logger))
	}
	if useSMTP {
		chain.Add("smtp", NewSMTPNotifier(mail.SMTPHost, mail.SMTPPort, mail.SMTPUser, mail.SMTPPassword, mail.From, mail.To, logger))
	}

	if len(chain.transports) == 0 {
		logger.Warnf(providers.TypeMail, "No mail transport configured (SENDGRID_API_KEY or SMTP_USER/SMTP_PASSWORD/EMAIL_TO); dispatches will fail and be retried")
	} else {
		logger.Infof(providers.TypeMail, "Mail transports: %v, timeout %s", chain.Transports(), mail.Timeout)
	}

	return NewTimeoutNotifier(chain, mail.Timeout)
}
