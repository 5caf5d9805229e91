package source

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// LookupEncoding resolves a character set name.
// Common aliases are matched first, then any IANA name or alias.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, reviewbench.ErrInvalidConfig)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported: %w", name, reviewbench.ErrInvalidConfig)
	}
	return enc, nil
}
