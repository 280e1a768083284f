package idformat

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const (
	htmlFirst = "abcdefghijklmnopqrstuvwxyz"
	htmlRest  = "abcdefghijklmnopqrstuvwxyz0123456789-_"

	htmlLength = 6
)

// Render renders digest in format f. A digest shorter than the format
// needs is a caller bug and panics rather than yielding a shorter id.
func Render(digest []byte, f Format) string {
	switch f {
	case Hex16:
		return hexPrefix(digest, 8, f)
	case Hex32:
		return hexPrefix(digest, 16, f)
	case Hex8:
		return hexPrefix(digest, 4, f)
	case UUID:
		need(digest, 16, f)
		var u uuid.UUID
		copy(u[:], digest[:16])
		return u.String()
	case HTMLID:
		need(digest, 1, f)
		return htmlID(digest)
	default:
		panic(fmt.Sprintf("idformat: unknown format %d", int(f)))
	}
}

func hexPrefix(digest []byte, n int, f Format) string {
	need(digest, n, f)
	return hex.EncodeToString(digest[:n])
}

func need(digest []byte, n int, f Format) {
	if len(digest) < n {
		panic(fmt.Sprintf("idformat: %s needs %d digest bytes, got %d", f, n, len(digest)))
	}
}

// htmlID starts with a letter and takes the low six bits of every other
// byte for the rest, so neighbouring digest bytes feed different characters.
func htmlID(digest []byte) string {
	out := make([]byte, 0, htmlLength)
	out = append(out, htmlFirst[int(digest[0])%len(htmlFirst)])
	for i := 1; i < htmlLength; i++ {
		offset := 1 + (i-1)*2
		if offset >= len(digest) {
			break
		}
		value := int(digest[offset] & 0x3F)
		out = append(out, htmlRest[value%len(htmlRest)])
	}
	return string(out)
}
