// Package csvutil holds the line-level CSV helpers used by candidate import
// and export. Lines are split one at a time so a malformed row only affects
// itself.
package csvutil

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const bom = "\uFEFF"

// SplitLine splits one CSV line into fields. Double-quoted fields may contain
// commas, and a doubled quote inside a quoted field yields one literal quote.
// Every field is trimmed of surrounding whitespace after unquoting.
func SplitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// Lines normalises an uploaded document into its records. A leading byte
// order mark and surrounding whitespace are removed first and CRLF endings
// are reduced to LF. A line break inside a quoted field stays part of that
// record. An empty result means the document had no content.
func Lines(data []byte) []string {
	text := string(sanitizeUTF8(data))
	text = strings.TrimPrefix(text, bom)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var records []string
	start := 0
	inQuotes := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				records = append(records, text[start:i])
				start = i + 1
			}
		}
	}
	// an unterminated quote keeps the remainder as one record
	return append(records, text[start:])
}

// Quote wraps a value in double quotes, doubling any quote it contains.
func Quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// JoinQuoted renders one output line with every field quoted.
func JoinQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return strings.Join(quoted, ",")
}

// Preview truncates a raw row for use in error messages.
func Preview(line string, max int) string {
	if len(line) <= max {
		return line
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut]
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
