package provider

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"urlembed/internal/embed"
)

// Response formats understood by Parse.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// scalarEscapePattern matches 8-digit \U escapes, which some providers emit for
// astral-plane characters and encoding/json rejects. The whole preceding run of
// backslashes is captured so an escaped backslash followed by a literal U is left alone.
var scalarEscapePattern = regexp.MustCompile(`\\+U[0-9a-fA-F]{8}`)

// numberPattern matches text that XML coercion turns into a number.
var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Parse decodes an oEmbed response body in the given format.
// Failures are returned as *embed.ParseError.
func Parse(format string, body []byte) (embed.Result, error) {
	var (
		result embed.Result
		err    error
	)
	switch format {
	case FormatJSON:
		result, err = parseJSON(body)
	case FormatXML:
		result, err = parseXML(body)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &embed.ParseError{Format: format, Err: err}
	}
	return result, nil
}

// RepairSurrogates rewrites \UXXXXXXXX escapes as standard \u escapes:
// astral scalars become a UTF-16 surrogate pair, BMP scalars a single escape.
// Scalars beyond U+10FFFF are left untouched.
func RepairSurrogates(body string) string {
	return scalarEscapePattern.ReplaceAllStringFunc(body, func(m string) string {
		n := strings.IndexByte(m, 'U')
		if n%2 == 0 {
			return m
		}
		prefix := m[:n-1]
		s, err := strconv.ParseUint(m[n+1:], 16, 32)
		if err != nil || s > 0x10FFFF {
			return m
		}
		if s <= 0xFFFF {
			return prefix + fmt.Sprintf(`\u%04x`, s)
		}
		h := (s-0x10000)/0x400 + 0xD800
		l := (s-0x10000)%0x400 + 0xDC00
		return prefix + fmt.Sprintf(`\u%04x\u%04x`, h, l)
	})
}

func parseJSON(body []byte) (embed.Result, error) {
	dec := json.NewDecoder(strings.NewReader(RepairSurrogates(string(body))))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("empty document")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level object")
	}

	result := make(embed.Result, len(raw))
	for k, v := range raw {
		result[k] = coerceJSON(v)
	}
	return result, nil
}

// coerceJSON turns json.Number values into int64 or float64, recursively.
func coerceJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = coerceJSON(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = coerceJSON(inner)
		}
		return t
	default:
		return v
	}
}

// xmlNode is a generic element tree.
type xmlNode struct {
	XMLName xml.Name
	Text    string    `xml:",chardata"`
	Nodes   []xmlNode `xml:",any"`
}

func parseXML(body []byte) (embed.Result, error) {
	var root xmlNode
	dec := xml.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	if root.XMLName.Local != "oembed" {
		return nil, fmt.Errorf("root element is <%s>, want <oembed>", root.XMLName.Local)
	}

	result := embed.Result{}
	for k, v := range children(root.Nodes) {
		result[k] = v
	}
	return result, nil
}

// children folds sibling elements into a map; repeated names collect into a slice.
func children(nodes []xmlNode) map[string]any {
	out := make(map[string]any, len(nodes))
	for _, n := range nodes {
		key := n.XMLName.Local
		val := nodeValue(n)
		switch existing := out[key].(type) {
		case nil:
			out[key] = val
		case []any:
			out[key] = append(existing, val)
		default:
			out[key] = []any{existing, val}
		}
	}
	return out
}

func nodeValue(n xmlNode) any {
	if len(n.Nodes) > 0 {
		return children(n.Nodes)
	}
	return coerceText(strings.TrimSpace(n.Text))
}

// coerceText converts numeric- and boolean-looking text to native values.
func coerceText(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if !numberPattern.MatchString(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
