// Package fingerprint turns the static location of an annotated parameter
// into a fixed-size digest.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Size is the digest length in bytes.
const Size = md5.Size

// Coordinates is the structural address of an annotation site.
type Coordinates struct {
	Path      string `json:"path"`
	Member    string `json:"member"`
	Parameter string `json:"parameter"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

// Key renders the hash input: path:member:parameter:line:column.
func (c Coordinates) Key() string {
	var b strings.Builder
	b.Grow(len(c.Path) + len(c.Member) + len(c.Parameter) + 16)
	b.WriteString(c.Path)
	b.WriteByte(':')
	b.WriteString(c.Member)
	b.WriteByte(':')
	b.WriteString(c.Parameter)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Line))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(c.Column))
	return b.String()
}

// Less orders coordinates by path, line, column, member, parameter.
func (c Coordinates) Less(other Coordinates) bool {
	if c.Path != other.Path {
		return c.Path < other.Path
	}
	if c.Line != other.Line {
		return c.Line < other.Line
	}
	if c.Column != other.Column {
		return c.Column < other.Column
	}
	if c.Member != other.Member {
		return c.Member < other.Member
	}
	return c.Parameter < other.Parameter
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%s:%d:%d (%s.%s)", c.Path, c.Line+1, c.Column+1, c.Member, c.Parameter)
}

// Digest is the 128-bit fingerprint of a site.
type Digest [Size]byte

// Bytes returns the digest as a slice.
func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Sum fingerprints c. Equal coordinates always produce equal digests.
// Negative line or column values violate the caller contract and panic.
func Sum(c Coordinates) Digest {
	if c.Line < 0 || c.Column < 0 {
		panic(fmt.Sprintf("fingerprint: negative position in %q", c.Key()))
	}
	return Digest(md5.Sum([]byte(c.Key())))
}
