package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	assert.Equal(t, "abc", tp.TruncateText("abc", 0))
	assert.Equal(t, "abc", tp.TruncateText("abc", 3))
	assert.Equal(t, "ab"+TruncationMarker, tp.TruncateText("abc", 2))

	// "ç" is two bytes; cutting in the middle must drop it entirely
	got := tp.TruncateText("aç", 2)
	assert.Equal(t, "a"+TruncationMarker, got)
	assert.True(t, utf8.ValidString(got))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	assert.Equal(t, "olá", tp.SanitizeUTF8("olá"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	got := tp.ProcessText("\xff"+strings.Repeat("x", 10), 5)
	assert.Equal(t, "xxxxx"+TruncationMarker, got)
}
