package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"studymail/internal/models"
	"studymail/internal/providers"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"
)

const (
	sendGridPath        = "/v3/mail/send"
	sendGridMaxAttempts = 3
	sendGridMaxInterval = 5 * time.Second
)

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	CustomArgs       map[string]string         `json:"custom_args,omitempty"`
}

// permanentError stops the retry loop: the request itself is wrong.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

type SendGridNotifier struct {
	client  *http.Client
	baseURL string
	apiKey  string
	from    string
	to      string
	logger  providers.Logger
}

func NewSendGridNotifier(client *http.Client, baseURL, apiKey, from, to string, logger providers.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		to:      to,
		logger:  logger,
	}
}

func (n *SendGridNotifier) Send(ctx context.Context, req models.NotificationRequest) error {
	msg := NewMessage(ctx, n.from, n.to, req)
	body, err := json.Marshal(sendGridPayload{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To}}}},
		From:             sendGridAddress{Email: msg.From},
		Subject:          msg.Subject,
		Content:          []sendGridContent{{Type: "text/plain", Value: msg.Body}},
		CustomArgs:       map[string]string{"dispatch_id": msg.ID},
	})
	if err != nil {
		return err
	}

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.MaxInterval = sendGridMaxInterval

	for attempt := 1; ; attempt++ {
		err = n.post(ctx, body)
		if err == nil {
			n.logger.Infof(providers.TypeMail, "Mail sent via SendGrid for %s to %s", req.Date, n.to)
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) || attempt >= sendGridMaxAttempts {
			return err
		}

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			return err
		}
		n.logger.Warnf(providers.TypeMail, "SendGrid attempt %d failed: %s, retrying in %s", attempt, err, sleep)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(sleep):
		}
	}
}

func (n *SendGridNotifier) post(ctx context.Context, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+sendGridPath, bytes.NewReader(body))
	if err != nil {
		return &permanentError{err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+n.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	statusErr := fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return statusErr
	}
	return &permanentError{err: statusErr}
}
