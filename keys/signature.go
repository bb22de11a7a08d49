package keys

import (
	"strconv"
	"strings"
)

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `,`, `\,`)

// Signature is the canonical text form of a request's identity-relevant
// fields: "name=value" pairs joined by '|', in the order they were added.
//
// The zero value is ready to use. Methods return the receiver for chaining:
//
//	sig := keys.NewSignature().Int("page", 1).Int("size", 5).Fold("name", name)
type Signature struct {
	b strings.Builder
}

// NewSignature returns an empty signature.
func NewSignature() *Signature { return &Signature{} }

func (s *Signature) field(name, value string) *Signature {
	if s.b.Len() > 0 {
		s.b.WriteByte('|')
	}
	s.b.WriteString(name)
	s.b.WriteByte('=')
	s.b.WriteString(value)
	return s
}

// Str adds a trimmed, case-sensitive field.
func (s *Signature) Str(name, v string) *Signature {
	return s.field(name, escaper.Replace(strings.TrimSpace(v)))
}

// Fold adds a trimmed, case-insensitive field.
func (s *Signature) Fold(name, v string) *Signature {
	return s.field(name, escaper.Replace(strings.ToLower(strings.TrimSpace(v))))
}

// Int adds an integer field.
func (s *Signature) Int(name string, v int64) *Signature {
	return s.field(name, strconv.FormatInt(v, 10))
}

// Bool adds a boolean field rendered as "true" or "false".
func (s *Signature) Bool(name string, v bool) *Signature {
	return s.field(name, strconv.FormatBool(v))
}

// Strings adds a list field; members are trimmed and joined with ','.
// Member order is kept, sort beforehand if the list is a set.
func (s *Signature) Strings(name string, vs []string) *Signature {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = escaper.Replace(strings.TrimSpace(v))
	}
	return s.field(name, strings.Join(parts, ","))
}

// String returns the canonical signature text.
func (s *Signature) String() string {
	if s == nil {
		return ""
	}
	return s.b.String()
}
