package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPage = `<html>
<head><title>Job</title></head>
<body>
<nav>Home | Jobs | About</nav>
<main class="job-description">
<h1>Platform Engineer</h1>
<p>Build and run the build farm.</p>
<p>Requirements: Go, Linux.</p>
</main>
<footer>Copyright</footer>
</body>
</html>`

func TestExtractJobText_UsesContentSelector(t *testing.T) {
	text, err := ExtractJobText(jobPage)
	require.NoError(t, err)

	assert.Contains(t, text, "Platform Engineer")
	assert.Contains(t, text, "Requirements: Go, Linux.")
	assert.NotContains(t, text, "Home | Jobs | About")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractJobText_FallsBackToBody(t *testing.T) {
	text, err := ExtractJobText("<html><body><p>Just a plain page.</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Just a plain page.", text)
}

func TestExtractJobText_CollapsesBlankLines(t *testing.T) {
	text, err := ExtractJobText("<html><body><p>one</p>\n\n\n<p>two</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", text)
}

func TestURL_FetchesAndExtracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(jobPage))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.Text, "Platform Engineer")
}

func TestURL_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Message, "404")
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not a url", nil)
	require.Error(t, err)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("too short"))
	long := make([]byte, MinContentLength)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
