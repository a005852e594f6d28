package folio

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// UploadsPrefix is the URL path under which locally stored files are served.
const UploadsPrefix = "/uploads/"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
	".avif": true,
}

// IsImageFile reports whether name carries a known image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsValidKey validates that a storage key is a single, safe file name.
// It checks that the key:
//   - is not empty, "." or ".."
//   - has no path separators
//   - does not start with "." (reserved for temp files)
//   - does not contain invalid characters: ? # ~ %
//   - is valid UTF-8 without control characters or whitespace
func IsValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}

	if key[0] == '.' {
		return false
	}

	if strings.ContainsAny(key, `/\?#~%`) {
		return false
	}

	if !utf8.ValidString(key) {
		return false
	}

	for _, r := range key {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateKey builds a collision-resistant storage key of the form
// <base36 millis>-<6 random base36 chars><ext>.
func GenerateKey(originalName string, now time.Time) (string, error) {
	suffix := make([]byte, 6)
	base := big.NewInt(int64(len(keyAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		suffix[i] = keyAlphabet[n.Int64()]
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !IsValidKey("x" + ext) {
		ext = ""
	}

	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix) + ext, nil
}

// LocalURL builds the absolute URL of a locally stored key for host.
// Without a host it returns the path alone.
func LocalURL(key string, host RequestHost) string {
	if host.Host == "" {
		return path.Join(UploadsPrefix, key)
	}
	scheme := host.Scheme
	if scheme == "" {
		scheme = "http"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   host.Host,
		Path:   path.Join(UploadsPrefix, key),
	}
	return u.String()
}
