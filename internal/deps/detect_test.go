package deps

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_SingleMissingPackage(t *testing.T) {
	detector := NewDetector()
	output := "! LaTeX Error: File `fontawesome.sty' not found.\n"

	missing := detector.Detect(output)
	assert.Equal(t, []string{"fontawesome"}, missing)
}

func TestDetect_MultipleMissingPackagesSorted(t *testing.T) {
	detector := NewDetector()
	output := "File `titlesec.sty' not found\nsomething\nFile `fontawesome.sty' not found\n"

	missing := detector.Detect(output)
	assert.Equal(t, []string{"fontawesome", "titlesec"}, missing)
}

func TestDetect_NoSignatureMatch(t *testing.T) {
	detector := NewDetector()

	// Unknown compiler errors are a generic compile failure, not a
	// missing dependency.
	missing := detector.Detect("! Undefined control sequence.\nl.10 \\notacommand")
	assert.Empty(t, missing)
}

func TestDetect_EmptyOutput(t *testing.T) {
	detector := NewDetector()
	assert.Empty(t, detector.Detect(""))
}

func TestDetect_DuplicateDiagnosticsCountOnce(t *testing.T) {
	detector := NewDetector()
	output := "File `xcolor.sty' not found\nFile `xcolor.sty' not found\n"

	missing := detector.Detect(output)
	assert.Equal(t, []string{"xcolor"}, missing)
}

func TestDetect_CustomRegistry(t *testing.T) {
	detector := NewDetector(Signature{
		Name:    "moderncv",
		Pattern: regexp.MustCompile("File `moderncv\\.cls' not found"),
	})

	missing := detector.Detect("File `moderncv.cls' not found")
	assert.Equal(t, []string{"moderncv"}, missing)

	// The custom registry replaces the default one entirely.
	assert.Empty(t, detector.Detect("File `fontawesome.sty' not found"))
}

func TestDetect_IsPureAndRepeatable(t *testing.T) {
	detector := NewDetector()
	output := "File `geometry.sty' not found"

	first := detector.Detect(output)
	second := detector.Detect(output)
	assert.Equal(t, first, second)
}
