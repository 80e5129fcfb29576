package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-admin-api/pkg/config"
)

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(config.SMTPConfig{}, zap.NewNop())
	_, ok := m.(*LogMailer)
	require.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), "a@x.com", "subject", "body"))
}

func TestNewUsesSMTPWhenHostConfigured(t *testing.T) {
	m := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}, nil)
	_, ok := m.(*SMTPMailer)
	assert.True(t, ok)
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("no-reply@example.com", "a@x.com", "Your code", "123456")
	assert.True(t, strings.HasPrefix(msg, "From: <no-reply@example.com>\r\n"))
	assert.Contains(t, msg, "To: a@x.com\r\n")
	assert.Contains(t, msg, "Subject: Your code\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n123456"))
}
