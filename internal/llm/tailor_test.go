package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

// fakeClient returns a canned response and records the prompt.
type fakeClient struct {
	response string
	err      error
	prompt   string
	tier     ModelTier
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, tier ModelTier) (string, error) {
	f.prompt = prompt
	f.tier = tier
	return f.response, f.err
}

func (f *fakeClient) GetModel(ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error              { return nil }

func baseRequest() types.TailorRequest {
	return types.TailorRequest{
		Template:       `\documentclass{article}\begin{document}x\end{document}`,
		Company:        "Acme",
		Role:           "Engineer",
		JobDescription: "Build things.",
	}
}

func TestBuildTailorPrompt_CoreSections(t *testing.T) {
	prompt := BuildTailorPrompt(baseRequest())

	assert.Contains(t, prompt, `Company: "Acme"`)
	assert.Contains(t, prompt, `Role: "Engineer"`)
	assert.Contains(t, prompt, "Build things.")
	assert.Contains(t, prompt, `\documentclass{article}`)
	assert.Contains(t, prompt, "NEVER FABRICATE")
	assert.NotContains(t, prompt, "REQUIRED KEYWORDS INTEGRATION")
	assert.NotContains(t, prompt, "COMPANY PAIN POINTS ANALYSIS")
}

func TestBuildTailorPrompt_KeywordsSection(t *testing.T) {
	req := baseRequest()
	req.Keywords = []string{"Kubernetes", "Terraform"}

	prompt := BuildTailorPrompt(req)
	assert.Contains(t, prompt, "REQUIRED KEYWORDS INTEGRATION")
	assert.Contains(t, prompt, "Kubernetes, Terraform")
}

func TestBuildTailorPrompt_PainPointsSection(t *testing.T) {
	req := baseRequest()
	req.PainPoints = "Slow deploys."

	prompt := BuildTailorPrompt(req)
	assert.Contains(t, prompt, "COMPANY PAIN POINTS ANALYSIS")
	assert.Contains(t, prompt, "Slow deploys.")
	assert.Contains(t, prompt, "use the provided pain points analysis above")
}

func TestTailorResume_CleansModelOutput(t *testing.T) {
	client := &fakeClient{response: "```latex\n\\documentclass{article}\\begin{document}ok\\end{document}\n```"}
	tailor := NewTailor(client)

	out, err := tailor.TailorResume(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Contains(t, out, `\documentclass{article}`)
	assert.NotContains(t, out, "```")
	assert.Equal(t, TierAdvanced, client.tier)
}

func TestTailorResume_RejectsNonLaTeXOutput(t *testing.T) {
	client := &fakeClient{response: "Sorry, I cannot help with that."}
	tailor := NewTailor(client)

	_, err := tailor.TailorResume(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a LaTeX document")
}

func TestTailorResume_PropagatesClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	tailor := NewTailor(client)

	_, err := tailor.TailorResume(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTailorResume_ValidatesRequest(t *testing.T) {
	tailor := NewTailor(&fakeClient{})
	_, err := tailor.TailorResume(context.Background(), types.TailorRequest{})
	require.Error(t, err)
}

func TestCleanLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain document untouched",
			in:   `\documentclass{article}`,
			want: `\documentclass{article}`,
		},
		{
			name: "latex fence stripped",
			in:   "```latex\n\\documentclass{article}\n```",
			want: "\\documentclass{article}",
		},
		{
			name: "preamble chatter dropped",
			in:   "Here is your resume:\n\\documentclass{article}\nbody",
			want: "\\documentclass{article}\nbody",
		},
		{
			name: "stray backticks removed",
			in:   "\\documentclass{article} `code`",
			want: "\\documentclass{article} code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLaTeX(tt.in))
		})
	}
}

func TestConfigGetModel_FallbackChain(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{TierLite: "lite-model"}}
	assert.Equal(t, "lite-model", cfg.GetModel(TierAdvanced))

	cfg = DefaultConfig()
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
}

func TestConfigWithModel_PinsAllTiers(t *testing.T) {
	cfg := DefaultConfig().WithModel("gemini-2.5-flash")
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierAdvanced))

	same := DefaultConfig().WithModel("")
	assert.Equal(t, "gemini-2.5-pro", same.GetModel(TierAdvanced))
}
