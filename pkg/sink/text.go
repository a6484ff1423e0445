package sink

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

// ErrUnknownEncoding is returned for character sets with no decoder.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// charsets maps header encoding names to decoders. UTF-8 and US-ASCII map
// to nil: their bytes are passed through.
var charsets = map[string]encoding.Encoding{
	"UTF-8":          nil,
	"US-ASCII":       nil,
	"ISO-8859-1":     charmap.ISO8859_1,
	"ISO-8859-2":     charmap.ISO8859_2,
	"ISO-8859-3":     charmap.ISO8859_3,
	"ISO-8859-4":     charmap.ISO8859_4,
	"ISO-8859-5":     charmap.ISO8859_5,
	"ISO-8859-6":     charmap.ISO8859_6,
	"ISO-8859-7":     charmap.ISO8859_7,
	"ISO-8859-8":     charmap.ISO8859_8,
	"ISO-8859-9":     charmap.ISO8859_9,
	"ISO-8859-11":    charmap.Windows874,
	"ISO-8859-13":    charmap.ISO8859_13,
	"ISO-8859-14":    charmap.ISO8859_14,
	"ISO-8859-15":    charmap.ISO8859_15,
	"CP437":          charmap.CodePage437,
	"CP850":          charmap.CodePage850,
	"CP852":          charmap.CodePage852,
	"CP858":          charmap.CodePage858,
	"CP860":          charmap.CodePage860,
	"CP862":          charmap.CodePage862,
	"CP863":          charmap.CodePage863,
	"CP865":          charmap.CodePage865,
	"CP866":          charmap.CodePage866,
	"CP874":          charmap.Windows874,
	"WINDOWS-1250":   charmap.Windows1250,
	"WINDOWS-1251":   charmap.Windows1251,
	"WINDOWS-1252":   charmap.Windows1252,
	"WINDOWS-1253":   charmap.Windows1253,
	"WINDOWS-1254":   charmap.Windows1254,
	"WINDOWS-1255":   charmap.Windows1255,
	"WINDOWS-1256":   charmap.Windows1256,
	"WINDOWS-1257":   charmap.Windows1257,
	"WINDOWS-1258":   charmap.Windows1258,
	"MACROMAN":       charmap.Macintosh,
	"MACCYRILLIC":    charmap.MacintoshCyrillic,
	"CP932":          japanese.ShiftJIS,
	"SHIFT_JISX0213": japanese.ShiftJIS,
	"EUC-JP":         japanese.EUCJP,
	"ISO-2022-JP":    japanese.ISO2022JP,
	"CP949":          korean.EUCKR,
	"EUC-KR":         korean.EUCKR,
	"CP936":          simplifiedchinese.GBK,
	"GB18030":        simplifiedchinese.GB18030,
	"CP950":          traditionalchinese.Big5,
	"BIG5-HKSCS":     traditionalchinese.Big5,
}

// TextDecoder converts string cells from the file character set to UTF-8.
// A nil *TextDecoder formats values unchanged.
type TextDecoder struct {
	name string
	dec  *encoding.Decoder
}

// NewTextDecoder returns a decoder for a header encoding name such as
// "WINDOWS-1252". Names outside the built-in table are looked up in the
// IANA registry.
func NewTextDecoder(name string) (*TextDecoder, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	enc, ok := charsets[key]
	if !ok {
		var err error
		enc, err = ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
	}
	d := &TextDecoder{name: key}
	if enc != nil {
		d.dec = enc.NewDecoder()
	}
	return d, nil
}

// Name returns the normalized character set name.
func (d *TextDecoder) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Format returns the display form of v, decoding strings.
func (d *TextDecoder) Format(v sas7bdat.Value) string {
	if v.Type() != sas7bdat.TypeString {
		return v.String()
	}
	return d.Decode(v.Str())
}

// Decode converts s to UTF-8. Input that fails to decode, and input that is
// already valid ASCII, is returned unchanged.
func (d *TextDecoder) Decode(s string) string {
	if d == nil || d.dec == nil || isASCII(s) {
		return s
	}
	out, err := d.dec.String(s)
	if err != nil || !utf8.ValidString(out) {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
