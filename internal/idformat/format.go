// Package idformat renders fingerprint digests into the textual identifier
// shapes the generator can emit.
package idformat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format selects the textual shape of a rendered identifier. The numeric
// values match the UniqueIdFormat enum of the attribute.
type Format int

const (
	// Hex16 is 16 lowercase hex characters from the first 8 digest bytes.
	Hex16 Format = iota
	// Hex32 is the whole digest as 32 lowercase hex characters.
	Hex32
	// UUID is the whole digest in canonical dashed UUID form.
	UUID
	// Hex8 is 8 lowercase hex characters from the first 4 digest bytes.
	Hex8
	// HTMLID is a 6 character id that is valid as an HTML element id.
	HTMLID
)

// Default is the format used when an annotation does not name one.
const Default = Hex16

var names = [...]string{
	Hex16:  "hex16",
	Hex32:  "hex32",
	UUID:   "uuid",
	Hex8:   "hex8",
	HTMLID: "htmlid",
}

// aliases maps lowercased attribute enum member names onto formats.
var aliases = map[string]Format{
	"hex16":  Hex16,
	"hex32":  Hex32,
	"uuid":   UUID,
	"guid":   UUID,
	"hex8":   Hex8,
	"htmlid": HTMLID,
}

var patterns = [...]*regexp.Regexp{
	Hex16:  regexp.MustCompile(`^[a-f0-9]{16}$`),
	Hex32:  regexp.MustCompile(`^[a-f0-9]{32}$`),
	UUID:   regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`),
	Hex8:   regexp.MustCompile(`^[a-f0-9]{8}$`),
	HTMLID: regexp.MustCompile(`^[a-z][a-z0-9\-_]{5}$`),
}

// All lists every format in enum order.
func All() []Format {
	return []Format{Hex16, Hex32, UUID, Hex8, HTMLID}
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f >= Hex16 && f <= HTMLID
}

func (f Format) String() string {
	if !f.Valid() {
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
	return names[f]
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown id format %d", int(f))
	}
	return []byte(names[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat accepts canonical names, attribute enum member names
// (optionally qualified, e.g. UniqueIdFormat.HtmlId) and numeric values.
func ParseFormat(value string) (Format, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Default, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		f := Format(n)
		if !f.Valid() {
			return 0, fmt.Errorf("unknown id format %q (supported: 0-4)", value)
		}
		return f, nil
	}
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		raw = raw[idx+1:]
	}
	f, ok := aliases[strings.ToLower(raw)]
	if !ok {
		return 0, fmt.Errorf("unknown id format %q (supported: hex16, hex32, uuid, hex8, htmlid)", value)
	}
	return f, nil
}

// Pattern returns the shape every identifier rendered in f matches.
func Pattern(f Format) *regexp.Regexp {
	if !f.Valid() {
		panic(fmt.Sprintf("idformat: unknown format %d", int(f)))
	}
	return patterns[f]
}
