package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean text untouched", "hello world", "hello world"},
		{"nul dropped", "he\x00llo", "hello"},
		{"control chars dropped", "a\x01b\x02c\x1fd", "abcd"},
		{"delete dropped", "a\x7fb", "ab"},
		{"tab kept", "a\tb", "a\tb"},
		{"newline kept", "a\nb", "a\nb"},
		{"carriage return kept", "a\rb", "a\rb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	input := "a\x00b\x01c\td\ne"
	once := Sanitize(input)
	assert.Equal(t, once, Sanitize(once))
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ssn replaced", "SSN 123-45-6789 on file", "SSN [REDACTED_SSN] on file"},
		{"multiple ssns", "123-45-6789 and 987-65-4321", "[REDACTED_SSN] and [REDACTED_SSN]"},
		{"card replaced", "card 4111111111111111 expires", "card [REDACTED_CARD] expires"},
		{"no pii untouched", "nothing sensitive here", "nothing sensitive here"},
		{"phone not matched", "call 555-1234", "call 555-1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Redact(tt.input))
		})
	}
}

func TestRedact_Idempotent(t *testing.T) {
	input := "SSN 123-45-6789, card 4111111111111111"
	once := Redact(input)
	assert.Equal(t, once, Redact(once))
}

func TestTruncateChars(t *testing.T) {
	assert.Equal(t, "abc", truncateChars("abc", 10))
	assert.Equal(t, "abc", truncateChars("abcdef", 3))
	assert.Equal(t, "héll", truncateChars("héllo", 4))
	assert.Equal(t, "", truncateChars("", 5))
}

func TestIsPDFName(t *testing.T) {
	assert.True(t, isPDFName("report.pdf"))
	assert.True(t, isPDFName("REPORT.PDF"))
	assert.True(t, isPDFName("archive/scan.Pdf"))
	assert.False(t, isPDFName("report.pdf.txt"))
	assert.False(t, isPDFName("report"))
	assert.False(t, isPDFName(""))
}
