package catalog

// reader.go cleans up spreadsheet exports before they reach the CSV decoder.
//
// Catalog files are usually produced by Excel or a dataframe export, so they
// may start with a UTF-8 byte order mark and may contain stray bytes from
// legacy encodings in free-text columns such as group names.

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader that yields r without a leading UTF-8 BOM.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CleanCell trims whitespace, strips Excel formula wrappers (="...") and
// surrounding quotes, and replaces invalid UTF-8 with '?'.
func CleanCell(s string) string {
	s = strings.ToValidUTF8(s, "?")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
