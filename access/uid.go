package access

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// UID is a card identifier as returned by the reader.
type UID []byte

// Valid reports whether u has one of the supported lengths.
func (u UID) Valid() bool {
	return len(u) == UIDLength4 || len(u) == UIDLength7
}

// Equal reports whether both UIDs have the same length and bytes.
func (u UID) Equal(other UID) bool {
	return len(u) == len(other) && bytes.Equal(u, other)
}

func (u UID) String() string {
	if len(u) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, b := range u {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Clone returns a copy that does not alias u.
func (u UID) Clone() UID {
	if u == nil {
		return nil
	}
	out := make(UID, len(u))
	copy(out, u)
	return out
}

// DecodeUID decodes the hex forms accepted by ParseUID without checking
// the length.
func DecodeUID(s string) (UID, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', ' ', '-', ',':
			return -1
		}
		return r
	}, s)

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse uid %q: %w", s, err)
	}
	return UID(raw), nil
}

// ParseUID accepts "B4123456", "B4:12:34:56", "b4 12 34 56" and
// "0xB4 0x12 0x34 0x56".
func ParseUID(s string) (UID, error) {
	uid, err := DecodeUID(s)
	if err != nil {
		return nil, err
	}
	if !uid.Valid() {
		return nil, fmt.Errorf("parse uid %q: %w", uid, ErrInvalidUID)
	}
	return uid, nil
}
