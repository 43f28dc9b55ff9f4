package clipboard

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NormalizeText strips an optional UTF-8/UTF-16 byte-order mark from a
// FormatText clipboard payload and validates the result as UTF-8,
// returning ProtocolError.Encoding on failure.
//
// A clipboard payload crossing OSes is exactly the kind of "might carry a
// BOM, might be UTF-16" text an encoding.Encoding plus transform.Bytes
// pipeline handles cleanly, rather than hand-rolled BOM stripping.
func NormalizeText(data []byte) ([]byte, error) {
	// The UTF-8 decoder below substitutes U+FFFD for invalid bytes instead
	// of failing, so input without a UTF-16 BOM is validated up front.
	utf16BOM := bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
	if !utf16BOM && !utf8.Valid(data) {
		return nil, protoErr(KindEncoding, "clipboard text is not valid UTF-8")
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, protoErr(KindEncoding, fmt.Sprintf("clipboard text transcoding failed: %v", err))
	}
	return out, nil
}
