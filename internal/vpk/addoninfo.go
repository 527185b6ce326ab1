package vpk

import (
	"bufio"
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// addonInfoName is the metadata entry the game stores at the pak root.
const addonInfoName = "addoninfo.txt"

// Title extracts the addontitle value from the VPK's embedded
// addoninfo.txt. It returns "" with a nil error when the pak has no
// addoninfo.txt or the file carries no usable title line; errors are
// reserved for unreadable or corrupt paks.
func Title(path string) (string, error) {
	data, err := ReadEntry(path, addonInfoName)
	if err != nil {
		if err == ErrEntryNotFound {
			return "", nil
		}
		return "", err
	}

	return ParseTitle(DecodeText(data)), nil
}

// DecodeText converts addoninfo.txt bytes to a string, trying UTF-8,
// UTF-16 (BOM required), GBK and Latin-1 in that order. The first encoding
// that decodes cleanly wins; as a last resort the bytes are interpreted as
// UTF-8 with replacement characters.
//
// Workshop paks come from all over the world; Chinese addons in particular
// frequently ship GBK-encoded metadata.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	if s, ok := decodeUTF16(data); ok {
		return s
	}

	if s, ok := decodeStrict(simplifiedchinese.GBK, data); ok {
		return s
	}

	if s, ok := decodeStrict(charmap.ISO8859_1, data); ok {
		return s
	}

	return string(bytes.ToValidUTF8(data, []byte("�")))
}

// decodeUTF16 decodes data as UTF-16 when it starts with a byte order
// mark. Without a BOM the encoding is ambiguous and the attempt is
// rejected, matching the behavior the metadata extraction has always had.
func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}

	var endian unicode.Endianness
	switch {
	case data[0] == 0xff && data[1] == 0xfe:
		endian = unicode.LittleEndian
	case data[0] == 0xfe && data[1] == 0xff:
		endian = unicode.BigEndian
	default:
		return "", false
	}

	dec := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data[2:])
	if err != nil {
		return "", false
	}
	return string(out), true
}

// decodeStrict decodes data with enc and rejects the result when the
// decoder had to substitute replacement characters, so a failed decode
// falls through to the next candidate encoding.
func decodeStrict(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// ParseTitle scans addoninfo.txt content for the addontitle key and
// returns the text between the first pair of double quotes on that line.
// Returns "" when no title line is present.
func ParseTitle(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "addontitle") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return ""
}
