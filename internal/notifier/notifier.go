// Package notifier delivers the daily study summary by e-mail.
package notifier

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"studymail/internal/models"
	"time"

	"github.com/google/uuid"
)

type NotifierInterface interface {
	Send(ctx context.Context, req models.NotificationRequest) error
}

type dispatchIDKey struct{}

// WithDispatchID tags ctx with the id of the dispatch attempt, used as the
// mail Message-ID so transport logs can be matched to watcher logs.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey{}, id)
}

func DispatchID(ctx context.Context) string {
	if id, ok := ctx.Value(dispatchIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// FormatHMS renders seconds as zero-padded HH:MM:SS.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Body    string
}

func NewMessage(ctx context.Context, from, to string, req models.NotificationRequest) Message {
	return Message{
		ID:      DispatchID(ctx),
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("[Study Timer] %s study report", req.Date),
		Body: fmt.Sprintf("Date: %s\nStudy time: %s (%d sec)\nCoins earned: %d\n\nGreat work today.\n",
			req.Date, FormatHMS(req.Secs), req.Secs, req.Coins),
	}
}

// Bytes renders the message as an RFC 5322 text/plain mail.
func (m Message) Bytes() []byte {
	var b strings.Builder
	domain := "studymail"
	if at := strings.LastIndex(m.From, "@"); at >= 0 && at < len(m.From)-1 {
		domain = m.From[at+1:]
	}

	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + m.ID + "@" + domain + ">\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}
