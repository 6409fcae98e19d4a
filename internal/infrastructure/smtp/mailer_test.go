package smtp

import (
	"context"
	"testing"

	"github.com/go-api-authsession/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@x.com", "a@x.com", "Hello", "body"))
	assert.Contains(t, msg, "From: noreply@x.com\r\n")
	assert.Contains(t, msg, "To: a@x.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "\r\n\r\nbody")
}

func TestSendEmail_CancelledContext(t *testing.T) {
	m := NewMailer(&config.Config{SMTPHost: "127.0.0.1", SMTPPort: "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendEmail(ctx, "a@x.com", "s", "b"), context.Canceled)
}
