package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUnconfiguredServiceLogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{}, zerolog.New(&buf))

	assert.NoError(t, svc.SendWelcomeEmail("a@example.com", "Ada"))
	assert.NoError(t, svc.SendConnectionRequestEmail("a@example.com", "Ada", "Bo"))
	assert.NoError(t, svc.SendTemporaryPasswordEmail("a@example.com", "Ada", "s3cret"))
	assert.Equal(t, 3, strings.Count(buf.String(), "SMTP credentials not configured"))
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestBuildMessageHeaders(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "MentorBridge", FromEmail: "no-reply@example.com"}}

	msg := string(svc.buildMessage("a@example.com", "Hi", "<p>x</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: MentorBridge <no-reply@example.com>\r\nTo: a@example.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}

func TestImplicitTLSOnPort465(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Port: 465}, zerolog.Nop()).(*EmailServiceImpl)
	assert.True(t, svc.config.UseTLS)
}
