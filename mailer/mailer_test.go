package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/config"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := buildMessage("shop@example.com", "alice@example.com", "Order placed", "line one\nline two", date)
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "From: shop@example.com\r\n")
	assert.Contains(t, s, "To: alice@example.com\r\n")
	assert.Contains(t, s, "Subject: Order placed\r\n")
	assert.Contains(t, s, "Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n")
	assert.Contains(t, s, "\r\n\r\nline one\r\nline two")
}

func TestBuildMessageRejectsHeaderInjection(t *testing.T) {
	_, err := buildMessage("shop@example.com", "alice@example.com\r\nBcc: eve@example.com", "hi", "", time.Now())
	assert.Error(t, err)
}

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(&config.Config{})
	assert.IsType(t, LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@example.com", "s", "b"))

	m = New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "587", SMTPUser: "u"})
	require.IsType(t, &SMTPMailer{}, m)
	assert.Equal(t, "smtp.example.com:587", m.(*SMTPMailer).addr)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSMTPMailer(&config.Config{SMTPHost: "127.0.0.1", SMTPPort: "1"}).Send(ctx, "a@example.com", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
}
