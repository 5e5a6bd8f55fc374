// Package mailer turns queued mail messages into SMTP messages.
package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedType = errors.New("unsupported mail type")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// envelope mirrors domain.MailMessage with the payload left undecoded until
// the type is known.
type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type kind struct {
	template string
	subject  string
}

var kinds = map[string]kind{
	domain.MailTypeCreateUser:    {template: "new_account_email.html", subject: "Care Roster - your new account"},
	domain.MailTypeResetPassword: {template: "reset_password_otp_email.html", subject: "Care Roster - reset your password"},
	domain.MailTypeChangeEmail:   {template: "change_email_email.html", subject: "Care Roster - confirm your new email"},
	domain.MailTypeInvoice:       {template: "invoice_email.html", subject: "Tax invoice %s"},
}

type Composer struct {
	from         string
	templatesDir string
}

func NewComposer(from, templatesDir string) *Composer {
	return &Composer{from: from, templatesDir: templatesDir}
}

// Compose decodes a queue message and builds the mail to send. Any error
// means the message can never be delivered as is.
func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	k, ok := kinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(env.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	if env.ID != "" {
		m.SetMessageIDWithValue(env.ID)
	}

	tmpl, err := template.ParseFiles(filepath.Join(c.templatesDir, k.template))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var data any
	switch env.Type {
	case domain.MailTypeCreateUser:
		data, err = decode[domain.CreateUserMailData](env.Data)
	case domain.MailTypeResetPassword:
		data, err = decode[domain.ResetPasswordMailData](env.Data)
	case domain.MailTypeChangeEmail:
		data, err = decode[domain.ChangeEmailMailData](env.Data)
	case domain.MailTypeInvoice:
		var inv domain.InvoiceMailData
		if inv, err = decode[domain.InvoiceMailData](env.Data); err == nil {
			err = attachInvoice(m, inv)
			k.subject = fmt.Sprintf(k.subject, inv.InvoiceNumber)
		}
		data = inv
	}
	if err != nil {
		return nil, err
	}

	if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	m.Subject(k.subject)

	return m, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode mail data: %w", err)
	}
	return v, nil
}

func attachInvoice(m *mail.Msg, inv domain.InvoiceMailData) error {
	if len(inv.Attachment) == 0 {
		return errors.New("invoice mail without attachment")
	}
	name := inv.FileName
	if name == "" {
		name = inv.InvoiceNumber + ".xlsx"
	}
	return m.AttachReader(name, bytes.NewReader(inv.Attachment), mail.WithFileContentType(xlsxContentType))
}
