package email

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// SMTPSettings describes how to reach a sender's outgoing mail server.
type SMTPSettings struct {
	Server string
	Port   int
	UseTLS bool
}

// Addr returns the host:port dial address.
func (s *SMTPSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server, s.Port)
}

// smtpProviders maps well-known email domains to their SMTP settings.
var smtpProviders = map[string]SMTPSettings{
	"gmail.com":      {Server: "smtp.gmail.com", Port: 587, UseTLS: true},
	"googlemail.com": {Server: "smtp.gmail.com", Port: 587, UseTLS: true},
	"outlook.com":    {Server: "smtp-mail.outlook.com", Port: 587, UseTLS: true},
	"hotmail.com":    {Server: "smtp-mail.outlook.com", Port: 587, UseTLS: true},
	"live.com":       {Server: "smtp-mail.outlook.com", Port: 587, UseTLS: true},
	"msn.com":        {Server: "smtp-mail.outlook.com", Port: 587, UseTLS: true},
	"yahoo.com":      {Server: "smtp.mail.yahoo.com", Port: 587, UseTLS: true},
	"ymail.com":      {Server: "smtp.mail.yahoo.com", Port: 587, UseTLS: true},
	"aol.com":        {Server: "smtp.aol.com", Port: 587, UseTLS: true},
	"icloud.com":     {Server: "smtp.mail.me.com", Port: 587, UseTLS: true},
	"me.com":         {Server: "smtp.mail.me.com", Port: 587, UseTLS: true},
	"mac.com":        {Server: "smtp.mail.me.com", Port: 587, UseTLS: true},
}

// SettingsForAddress returns the SMTP settings for a sender address, or
// false when the domain is not a known provider.
func SettingsForAddress(address string) (SMTPSettings, bool) {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return SMTPSettings{}, false
	}
	settings, ok := smtpProviders[strings.ToLower(address[at+1:])]
	return settings, ok
}

// Message is a fully addressed outgoing email, optionally with a PDF
// attachment.
type Message struct {
	From           string
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Encode renders the message as a MIME document ready for SMTP DATA.
func (m *Message) Encode() ([]byte, error) {
	var sb strings.Builder
	boundary := "resume-tailor-boundary"

	sb.WriteString(fmt.Sprintf("From: %s\r\n", m.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", m.To))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")

	body := stripHeaders(m.Body)

	if m.AttachmentPath == "" {
		sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		sb.WriteString(body)
		sb.WriteString("\r\n")
		return []byte(sb.String()), nil
	}

	attachment, err := os.ReadFile(m.AttachmentPath)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}

	sb.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: application/pdf\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", filepath.Base(m.AttachmentPath)))
	writeBase64Wrapped(&sb, attachment)
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(sb.String()), nil
}

// base64LineLen is the MIME line length for encoded attachments. SMTP
// servers reject lines over 998 octets, so the encoded body must be
// wrapped.
const base64LineLen = 76

// writeBase64Wrapped base64-encodes data into sb as CRLF-separated lines
// of at most base64LineLen characters.
func writeBase64Wrapped(sb *strings.Builder, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > base64LineLen {
		sb.WriteString(encoded[:base64LineLen])
		sb.WriteString("\r\n")
		encoded = encoded[base64LineLen:]
	}
	sb.WriteString(encoded)
}

// Send delivers the message through the sender's SMTP provider using
// password authentication. Credentials come from the caller, never from
// interactive prompts.
func Send(msg *Message, password string) error {
	settings, ok := SettingsForAddress(msg.From)
	if !ok {
		return fmt.Errorf("no SMTP settings known for sender %s", msg.From)
	}

	payload, err := msg.Encode()
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", msg.From, password, settings.Server)
	if err := smtp.SendMail(settings.Addr(), auth, msg.From, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}
	return nil
}
