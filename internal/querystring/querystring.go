// Package querystring decodes the serialized queryset expressions that job pages
// carry in their URL (for example "status:failed;event__icontains:runner") and
// encodes them into flat API query parameters.
package querystring

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	termSeparator  = ";"
	valueSeparator = ":"
)

// Term is a single key/value filter of a queryset expression.
type Term struct {
	Key   string
	Value string
}

// DecodeError reports a malformed queryset expression.
type DecodeError struct {
	Expr   string
	Term   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Term == "" {
		return fmt.Sprintf("decode queryset %q: %s", e.Expr, e.Reason)
	}
	return fmt.Sprintf("decode queryset %q: term %q: %s", e.Expr, e.Term, e.Reason)
}

// Unescape percent-decodes an expression copied out of a page URL. "+" is
// kept literally.
func Unescape(expr string) (string, error) {
	raw, err := url.PathUnescape(expr)
	if err != nil {
		return "", &DecodeError{Expr: expr, Reason: "invalid escape sequence"}
	}
	return raw, nil
}

// Decode parses an already unescaped queryset expression into its terms,
// preserving order. Terms are separated by ";" and split on the first ":" so
// values may contain colons. Empty terms are skipped; an empty expression
// yields no terms.
func Decode(expr string) ([]Term, error) {
	var terms []Term
	for _, part := range strings.Split(expr, termSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, valueSeparator)
		if !ok {
			return nil, &DecodeError{Expr: expr, Term: part, Reason: "missing ':' separator"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &DecodeError{Expr: expr, Term: part, Reason: "empty key"}
		}
		terms = append(terms, Term{Key: key, Value: strings.TrimSpace(value)})
	}
	return terms, nil
}

// Encode flattens terms into query parameters. Repeated keys keep every value
// in the order they appeared.
func Encode(terms []Term) url.Values {
	out := make(url.Values, len(terms))
	for _, t := range terms {
		out.Add(t.Key, t.Value)
	}
	return out
}

// Merge returns a copy of base overlaid with overlay. A key present in overlay
// replaces every value of that key in base.
func Merge(base, overlay url.Values) url.Values {
	out := make(url.Values, len(base)+len(overlay))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overlay {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DecodeParams is Decode followed by Encode.
func DecodeParams(expr string) (url.Values, error) {
	terms, err := Decode(expr)
	if err != nil {
		return nil, err
	}
	return Encode(terms), nil
}
