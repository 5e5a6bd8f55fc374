package mailer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

const templatesDir = "../../templates"

func queued(t *testing.T, msg domain.MailMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func render(t *testing.T, m *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestComposeResetPassword(t *testing.T) {
	c := NewComposer("noreply@example.com", templatesDir)

	m, err := c.Compose(queued(t, domain.MailMessage{
		ID:   "b6f0c8a2-1111-4c33-9e2a-7d1d2c3b4a55",
		Type: domain.MailTypeResetPassword,
		To:   "jane@example.com",
		Data: domain.ResetPasswordMailData{FullName: "Jane Carer", OTP: "123456", Expiration: 15},
	}))
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, rcpts)
	assert.Equal(t, []string{"Care Roster - reset your password"}, m.GetGenHeader(mail.HeaderSubject))

	raw := render(t, m)
	assert.Contains(t, raw, "123456")
	assert.Contains(t, raw, "15 minutes")
}

func TestComposeInvoiceAttachesWorkbook(t *testing.T) {
	c := NewComposer("accounts@example.com", templatesDir)

	m, err := c.Compose(queued(t, domain.MailMessage{
		Type: domain.MailTypeInvoice,
		To:   "plan@example.com",
		Data: domain.InvoiceMailData{
			ClientName:    "Sam Client",
			InvoiceNumber: "INV-202503-ABCDEF12",
			PeriodStart:   "01/03/2025",
			PeriodEnd:     "31/03/2025",
			Total:         "834.00",
			ProviderName:  "Care Roster Pty Ltd",
			FileName:      "INV-202503-ABCDEF12.xlsx",
			Attachment:    []byte("PK fake workbook"),
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"Tax invoice INV-202503-ABCDEF12"}, m.GetGenHeader(mail.HeaderSubject))
	attachments := m.GetAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, "INV-202503-ABCDEF12.xlsx", attachments[0].Name)

	raw := render(t, m)
	assert.Contains(t, raw, "Sam Client")
	assert.Contains(t, raw, "834.00")
}

func TestComposeInvoiceWithoutAttachment(t *testing.T) {
	c := NewComposer("accounts@example.com", templatesDir)

	_, err := c.Compose(queued(t, domain.MailMessage{
		Type: domain.MailTypeInvoice,
		To:   "plan@example.com",
		Data: domain.InvoiceMailData{InvoiceNumber: "INV-1"},
	}))
	assert.ErrorContains(t, err, "attachment")
}

func TestComposeRejectsBadMessages(t *testing.T) {
	c := NewComposer("noreply@example.com", templatesDir)

	_, err := c.Compose([]byte("{not json"))
	assert.Error(t, err)

	_, err = c.Compose(queued(t, domain.MailMessage{Type: "carrier_pigeon", To: "a@example.com"}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = c.Compose(queued(t, domain.MailMessage{Type: domain.MailTypeCreateUser, To: "not an address"}))
	assert.Error(t, err)
}
