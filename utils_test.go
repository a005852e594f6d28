package folio_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"a.PNG", true},
		{"a.jpg", true},
		{"a.jpeg", true},
		{"a.gif", true},
		{"a.webp", true},
		{"a.bmp", true},
		{"a.svg", true},
		{"a.avif", true},
		{"archive.tar.gz", false},
		{"notes.txt", false},
		{"png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, folio.IsImageFile(tt.name))
		})
	}
}

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"generated key", "lq2x9c-a1b2c3.png", true},
		{"unicode", "café.png", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"hidden", ".tmp.png", false},
		{"slash", "a/b.png", false},
		{"backslash", `a\b.png`, false},
		{"traversal", "../a.png", false},
		{"query", "a?.png", false},
		{"fragment", "a#.png", false},
		{"percent", "a%20.png", false},
		{"tilde", "~a.png", false},
		{"space", "a b.png", false},
		{"control", "a\x00.png", false},
		{"invalid utf8", "a\xff.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, folio.IsValidKey(tt.key))
		})
	}
}

func TestGenerateKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	key, err := folio.GenerateKey("Holiday Photo.JPEG", now)
	require.NoError(t, err)

	prefix, rest, found := strings.Cut(key, "-")
	require.True(t, found)
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 36), prefix)
	assert.Regexp(t, `^[0-9a-z]{6}\.jpeg$`, rest)
	assert.True(t, folio.IsValidKey(key))

	other, err := folio.GenerateKey("Holiday Photo.JPEG", now)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestGenerateKey_UnsafeExtensionDropped(t *testing.T) {
	key, err := folio.GenerateKey("weird.p%ng", time.Now())
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]+-[0-9a-z]{6}$`, key)

	key, err = folio.GenerateKey("noext", time.Now())
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]+-[0-9a-z]{6}$`, key)
}

func TestLocalURL(t *testing.T) {
	tests := []struct {
		name string
		host folio.RequestHost
		want string
	}{
		{"no host", folio.RequestHost{}, "/uploads/k.png"},
		{"default scheme", folio.RequestHost{Host: "localhost:3000"}, "http://localhost:3000/uploads/k.png"},
		{"https", folio.RequestHost{Scheme: "https", Host: "example.com"}, "https://example.com/uploads/k.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, folio.LocalURL("k.png", tt.host))
		})
	}
}
