package meta

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

// Separator is the control byte (SUB) ending the binary preamble.
const Separator byte = 26

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf8"

// Section returns the textual part of an export: everything after the first
// Separator, or the whole payload when there is none.
func Section(data []byte) []byte {
	if i := bytes.IndexByte(data, Separator); i >= 0 {
		return data[i+1:]
	}
	return data
}

// codecs covers codec names outside the WHATWG label set, written the way
// exports configure them (cp437, koi8_u, iso8859_5, ...).
var codecs = map[string]encoding.Encoding{
	"utf_8":        utf8Strict{},
	"u8":           utf8Strict{},
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp852":        charmap.CodePage852,
	"cp855":        charmap.CodePage855,
	"cp858":        charmap.CodePage858,
	"cp860":        charmap.CodePage860,
	"cp862":        charmap.CodePage862,
	"cp863":        charmap.CodePage863,
	"cp865":        charmap.CodePage865,
	"cp866":        charmap.CodePage866,
	"cp1250":       charmap.Windows1250,
	"cp1251":       charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"cp1253":       charmap.Windows1253,
	"cp1254":       charmap.Windows1254,
	"cp1255":       charmap.Windows1255,
	"cp1256":       charmap.Windows1256,
	"cp1257":       charmap.Windows1257,
	"cp1258":       charmap.Windows1258,
	"koi8_r":       charmap.KOI8R,
	"koi8_u":       charmap.KOI8U,
	"mac_cyrillic": charmap.MacintoshCyrillic,
	"latin_1":      charmap.ISO8859_1,
	"iso8859_1":    charmap.ISO8859_1,
	"iso8859_2":    charmap.ISO8859_2,
	"iso8859_5":    charmap.ISO8859_5,
	"iso8859_15":   charmap.ISO8859_15,
}

// lookupEncoding resolves WHATWG labels first, then the codec names above.
// UTF-8 always resolves to the strict decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err == nil {
		if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
			return utf8Strict{}, nil
		}
		return enc, nil
	}
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
	if enc, ok := codecs[normalized]; ok {
		return enc, nil
	}
	return nil, err
}

// Decode converts the text section to a Go string using the named encoding.
func Decode(text []byte, name string) (string, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", errs.ErrMalformedEncoding, name, err)
	}
	out, err := enc.NewDecoder().Bytes(text)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errs.ErrMalformedEncoding, name, err)
	}
	return string(out), nil
}

// utf8Strict rejects invalid sequences instead of replacing them with U+FFFD.
type utf8Strict struct{}

func (utf8Strict) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: encoding.UTF8Validator}
}

func (utf8Strict) NewEncoder() *encoding.Encoder {
	return unicode.UTF8.NewEncoder()
}
