package domain

type MailMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser    = "create_user"
	MailTypeResetPassword = "reset_password"
	MailTypeChangeEmail   = "change_email"
	MailTypeInvoice       = "invoice"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type InvoiceMailData struct {
	ClientName    string `json:"clientName"`
	InvoiceNumber string `json:"invoiceNumber"`
	PeriodStart   string `json:"periodStart"`
	PeriodEnd     string `json:"periodEnd"`
	Total         string `json:"total"`
	ProviderName  string `json:"providerName"`
	FileName      string `json:"fileName"`
	// Attachment is the workbook; encoding/json carries it as base64.
	Attachment []byte `json:"attachment"`
}
