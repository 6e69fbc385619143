package ganttdata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type dateState int

const (
	dateUnset dateState = iota
	dateValid
	dateInvalid
)

// Date is an instant given either as an ISO-8601 string or as epoch milliseconds.
// Unparseable input does not fail decoding. The date is kept as invalid so the
// layout can exclude just the owning task.
type Date struct {
	ms    int64
	state dateState
}

func NewDate(ms int64) Date {
	return Date{ms: ms, state: dateValid}
}

func DateFromTime(t time.Time) Date {
	return NewDate(t.UnixMilli())
}

// Millis returns the epoch milliseconds and whether the date is usable.
func (d Date) Millis() (int64, bool) {
	return d.ms, d.state == dateValid
}

func (d Date) IsSet() bool {
	return d.state != dateUnset
}

func (d Date) IsValid() bool {
	return d.state == dateValid
}

func (d Date) String() string {
	switch d.state {
	case dateValid:
		return time.UnixMilli(d.ms).UTC().Format(time.RFC3339Nano)
	case dateInvalid:
		return "invalid"
	default:
		return ""
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses s as epoch milliseconds or one of the accepted ISO-8601 layouts.
// Dates without a zone are read as UTC.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return NewDate(int64(n))
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateFromTime(t)
		}
	}
	return Date{state: dateInvalid}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			*d = Date{state: dateInvalid}
			return nil
		}
	} else {
		s = string(b)
	}
	*d = ParseDate(s)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.state != dateValid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(d.ms, 10)), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*d = Date{state: dateInvalid}
		return nil
	}
	if value.Tag == "!!null" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(value.Value)
	return nil
}
