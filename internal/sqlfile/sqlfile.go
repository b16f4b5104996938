// Package sqlfile reads SQL scripts from disk in a configurable charset.
package sqlfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultCharset is used when no charset is configured.
const DefaultCharset = "utf-8"

// ErrInputNotFound is returned when the script path does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Read loads path and decodes it from charset to UTF-8. A leading byte order
// mark is removed whatever the charset.
func Read(path, charset string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data, charset)
}

// Decode converts data from charset to UTF-8.
func Decode(data []byte, charset string) (string, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s input: %w", charset, err)
	}
	return string(out), nil
}

// Lookup resolves a WHATWG charset label such as "shift_jis" or "euc-jp".
// An empty label means UTF-8.
func Lookup(charset string) (encoding.Encoding, error) {
	if strings.TrimSpace(charset) == "" {
		charset = DefaultCharset
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", charset, err)
	}
	return enc, nil
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
