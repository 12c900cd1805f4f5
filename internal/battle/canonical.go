package battle

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalStandings produces a canonical JSON snapshot of a standings list.
//
// Canonical means byte-stable: object keys emitted in a fixed sorted order,
// strings NFC normalized, no HTML escaping, no insignificant whitespace.
// The scenario harness compares these snapshots against golden files, and
// the verify command diffs a replayed snapshot against the stored one, so
// two equal standings must always serialize to identical bytes.
//
// The input is not sorted here; callers sort with SortStandings first.
func MarshalStandings(sessionID string, standings []Photo) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"session":`)
	if err := writeCanonicalString(&buf, sessionID); err != nil {
		return nil, err
	}

	buf.WriteString(`,"standings":[`)
	for i, p := range standings {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalPhoto(&buf, p); err != nil {
			return nil, fmt.Errorf("standings[%d]: %w", i, err)
		}
	}
	buf.WriteString("]}")

	return buf.Bytes(), nil
}

// writeCanonicalPhoto emits one photo record with keys in sorted order.
func writeCanonicalPhoto(buf *bytes.Buffer, p Photo) error {
	buf.WriteString(`{"id":`)
	if err := writeCanonicalString(buf, p.ID); err != nil {
		return err
	}
	buf.WriteString(`,"losses":`)
	buf.WriteString(strconv.Itoa(p.Losses))
	buf.WriteString(`,"rating":`)
	buf.WriteString(strconv.Itoa(p.Rating))
	buf.WriteString(`,"total_votes":`)
	buf.WriteString(strconv.Itoa(p.TotalVotes))
	buf.WriteString(`,"wins":`)
	buf.WriteString(strconv.Itoa(p.Wins))
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString emits a JSON string: NFC normalized, minimal
// escaping, no HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	buf.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}
