package gateway

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Stringish tolerates string/number/bool and stores it as a string.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
		return nil
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

func (s Stringish) String() string { return strings.TrimSpace(string(s)) }

// Numberish accepts 12, 12.5, "12", "12.5" and " 1,234 ". Anything else decodes
// to zero with Valid false.
type Numberish struct {
	Value float64
	Valid bool
}

func (n *Numberish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = Numberish{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(str), ",", "")
	}
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = f, true
	return nil
}

func (n Numberish) Int() int { return int(n.Value) }

// Present reports whether a JSON value is something other than absent or null.
func Present(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && string(t) != "null"
}
