package notifier

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"studymail/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts a single session and records the commands and message.
type fakeSMTP struct {
	ln       net.Listener
	mu       sync.Mutex
	commands []string
	data     string
	rejectTo bool
	done     chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go f.serve()
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	reply("220 fake ESMTP")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		f.mu.Lock()
		f.commands = append(f.commands, line)
		f.mu.Unlock()

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO":
			reply("250-fake")
			reply("250 AUTH PLAIN")
		case "AUTH":
			reply("235 ok")
		case "MAIL":
			reply("250 ok")
		case "RCPT":
			if f.rejectTo {
				reply("550 no such user")
				continue
			}
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			f.mu.Lock()
			f.data = b.String()
			f.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func (f *fakeSMTP) snapshot() ([]string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...), f.data
}

func TestSMTP_DeliversMessage(t *testing.T) {
	srv := startFakeSMTP(t)
	n := NewSMTPNotifier("127.0.0.1", srv.port(), "me@example.com", "secret", "me@example.com", "you@example.com", &testutil.MockLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Send(WithDispatchID(ctx, "d-1"), testReq))
	<-srv.done

	commands, data := srv.snapshot()
	joined := strings.Join(commands, "\n")
	assert.Contains(t, joined, "AUTH PLAIN")
	assert.Contains(t, joined, "MAIL FROM:<me@example.com>")
	assert.Contains(t, joined, "RCPT TO:<you@example.com>")
	assert.Contains(t, data, "Subject: [Study Timer] 2024-01-01 study report")
	assert.Contains(t, data, "Message-ID: <d-1@example.com>")
	assert.Contains(t, data, "Study time: 01:00:00 (3600 sec)")
}

func TestSMTP_RecipientRejected(t *testing.T) {
	srv := startFakeSMTP(t)
	srv.rejectTo = true
	n := NewSMTPNotifier("127.0.0.1", srv.port(), "me@example.com", "secret", "me@example.com", "nobody@example.com", &testutil.MockLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := n.Send(ctx, testReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "RCPT TO")
}

func TestSMTP_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n := NewSMTPNotifier("127.0.0.1", port, "u", "p", "me@example.com", "you@example.com", &testutil.MockLogger{})
	err = n.Send(context.Background(), testReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial 127.0.0.1:"+strconv.Itoa(port))
}
