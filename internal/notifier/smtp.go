package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"studymail/internal/models"
	"studymail/internal/providers"
)

const smtpsPort = 465

type SMTPNotifier struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       string
	logger   providers.Logger
}

func NewSMTPNotifier(host string, port int, user, password, from, to string, logger providers.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
		logger:   logger,
	}
}

// Send delivers one message over a fresh connection. The context deadline is
// applied to the socket, so a stalled server cannot hold the caller past it.
func (n *SMTPNotifier) Send(ctx context.Context, req models.NotificationRequest) error {
	msg := NewMessage(ctx, n.from, n.to, req)
	addr := net.JoinHostPort(n.host, strconv.Itoa(n.port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConfig := &tls.Config{ServerName: n.host}
	if n.port == smtpsPort {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer c.Close()

	if n.port != smtpsPort {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if n.user != "" {
		if err = c.Auth(smtp.PlainAuth("", n.user, n.password, n.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err = c.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err = c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp end of data: %w", err)
	}

	if err = c.Quit(); err != nil {
		n.logger.Debugf(providers.TypeMail, "SMTP quit: %s", err)
	}

	n.logger.Infof(providers.TypeMail, "Mail sent via SMTP for %s to %s", req.Date, n.to)
	return nil
}
