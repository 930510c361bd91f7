package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

type fakeClient struct {
	response string
	prompt   string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompt = prompt
	return f.response, nil
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                  { return nil }

func TestDraftEmail_PromptCarriesContext(t *testing.T) {
	client := &fakeClient{response: "Subject: Hello\n\nHi Jordan,"}
	drafter := NewDrafter(client)

	draft, err := drafter.DraftEmail(context.Background(), types.EmailRequest{
		ResumeLaTeX:       `\documentclass{article}\begin{document}\section{Skills} Go, Linux \end{document}`,
		Company:           "Acme",
		Role:              "Engineer",
		JobDescription:    "Run the build farm.",
		RecruiterName:     "Jordan Lee",
		RecruiterPosition: "Technical Recruiter",
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject: Hello\n\nHi Jordan,", draft)

	assert.Contains(t, client.prompt, "Jordan Lee, Technical Recruiter at Acme")
	assert.Contains(t, client.prompt, "Run the build farm.")
	// Resume context arrives as plain text, not LaTeX markup.
	assert.Contains(t, client.prompt, "Skills:")
	assert.NotContains(t, client.prompt, `\documentclass`)
}

func TestDraftEmail_ValidatesRequest(t *testing.T) {
	drafter := NewDrafter(&fakeClient{})
	_, err := drafter.DraftEmail(context.Background(), types.EmailRequest{})
	require.Error(t, err)
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"explicit subject", "Subject: Application for Engineer\n\nHi", "Application for Engineer"},
		{"uppercase subject", "SUBJECT: Hello\nbody", "Hello"},
		{"first non-header line", "From: me@example.com\nOpening line here\nmore", "Opening line here"},
		{"fallback", "", "Application for Position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSubject(tt.in))
		})
	}
}

func TestPlainTextFromLaTeX(t *testing.T) {
	latex := `\documentclass{article}
\usepackage{geometry}
% a comment
\begin{document}
\section{Work Experience}
\item Built a pipeline
\item Shipped a product
\end{document}`

	text := PlainTextFromLaTeX(latex)
	assert.Contains(t, text, "Work Experience:")
	assert.Contains(t, text, "- Built a pipeline")
	assert.NotContains(t, text, `\documentclass`)
	assert.NotContains(t, text, `\usepackage`)
	assert.NotContains(t, text, "a comment")
}

func TestPlainTextFromLaTeX_Truncates(t *testing.T) {
	latex := `\begin{document}` + strings.Repeat("word ", 1000) + `\end{document}`
	text := PlainTextFromLaTeX(latex)
	assert.LessOrEqual(t, len(text), 2000)
	assert.True(t, strings.HasSuffix(text, "..."))
}

func TestSettingsForAddress(t *testing.T) {
	settings, ok := SettingsForAddress("someone@gmail.com")
	require.True(t, ok)
	assert.Equal(t, "smtp.gmail.com:587", settings.Addr())

	_, ok = SettingsForAddress("someone@internal.example")
	assert.False(t, ok)

	_, ok = SettingsForAddress("not-an-address")
	assert.False(t, ok)
}

func TestMessageEncode_PlainBodyStripsStrayHeaders(t *testing.T) {
	msg := &Message{
		From:    "me@gmail.com",
		To:      "recruiter@acme.com",
		Subject: "Application",
		Body:    "Subject: duplicated\nFrom: me@gmail.com\nActual body text",
	}

	payload, err := msg.Encode()
	require.NoError(t, err)

	s := string(payload)
	assert.Contains(t, s, "To: recruiter@acme.com")
	assert.Contains(t, s, "Actual body text")
	// The stray headers inside the body are removed; only one Subject
	// header survives.
	assert.Equal(t, 1, strings.Count(s, "Subject:"))
}

func TestMessageEncode_WithAttachment(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.5 fake"), 0644))

	msg := &Message{
		From:           "me@gmail.com",
		To:             "recruiter@acme.com",
		Subject:        "Application",
		Body:           "Please find my resume attached.",
		AttachmentPath: pdf,
	}

	payload, err := msg.Encode()
	require.NoError(t, err)

	s := string(payload)
	assert.Contains(t, s, "multipart/mixed")
	assert.Contains(t, s, "application/pdf")
	assert.Contains(t, s, `filename="resume.pdf"`)
}

func TestMessageEncode_AttachmentLinesFitSMTPLimit(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdf, bytes.Repeat([]byte{0xAB}, 64*1024), 0644))

	msg := &Message{
		From:           "me@gmail.com",
		To:             "recruiter@acme.com",
		Subject:        "Application",
		Body:           "Please find my resume attached.",
		AttachmentPath: pdf,
	}

	payload, err := msg.Encode()
	require.NoError(t, err)

	// SMTP limits lines to 998 octets; the encoded attachment is wrapped
	// at 76 characters, so every line of the message must stay well under.
	longest := 0
	for _, line := range strings.Split(string(payload), "\r\n") {
		if len(line) > longest {
			longest = len(line)
		}
	}
	assert.LessOrEqual(t, longest, 998)

	// The wrapped body must still decode to the original bytes.
	start := strings.Index(string(payload), "\r\n\r\n--")
	require.Positive(t, start)
	encoded := string(payload)
	encoded = encoded[strings.Index(encoded, "Content-Disposition"):]
	encoded = encoded[strings.Index(encoded, "\r\n\r\n")+4:]
	encoded = encoded[:strings.Index(encoded, "\r\n--")]
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(encoded, "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 64*1024), decoded)
}

func TestMessageEncode_MissingAttachment(t *testing.T) {
	msg := &Message{
		From:           "me@gmail.com",
		To:             "r@acme.com",
		Subject:        "x",
		Body:           "y",
		AttachmentPath: "/nonexistent/resume.pdf",
	}
	_, err := msg.Encode()
	require.Error(t, err)
}
