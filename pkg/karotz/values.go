package karotz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Int is an optional integer reported by the device. Firmware versions disagree on
// whether numbers are sent as JSON numbers or quoted strings, and missing values are
// often sent as "" instead of being omitted. Both of those decode as unset.
type Int struct {
	value int64
	set   bool
}

// IntOf returns a set Int holding v.
func IntOf(v int) Int { return Int{value: int64(v), set: true} }

// Value returns the integer, or 0 when unset.
func (i Int) Value() int { return int(i.value) }

// Valid reports whether the device sent a value.
func (i Int) Valid() bool { return i.set }

// Or returns the value when set and def otherwise.
func (i Int) Or(def int) int {
	if !i.set {
		return def
	}
	return int(i.value)
}

// Is reports whether the value is set and equal to n.
func (i Int) Is(n int) bool { return i.set && i.value == int64(n) }

func (i Int) String() string {
	if !i.set {
		return "<unset>"
	}
	return strconv.FormatInt(i.value, 10)
}

// UnmarshalJSON accepts numbers, quoted numbers, booleans, "" and null.
func (i *Int) UnmarshalJSON(data []byte) error {
	raw, ok, err := scalarText(data)
	if err != nil {
		return err
	}
	if !ok {
		*i = Int{}
		return nil
	}
	switch raw {
	case "true":
		*i = IntOf(1)
		return nil
	case "false":
		*i = IntOf(0)
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		n = int64(f)
	}
	*i = Int{value: n, set: true}
	return nil
}

// MarshalJSON writes null for unset values.
func (i Int) MarshalJSON() ([]byte, error) {
	if !i.set {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, i.value, 10), nil
}

// Flag is an optional boolean. The text-to-speech endpoint answers with real JSON
// booleans, other endpoints use 0/1 either bare or quoted.
type Flag struct {
	value bool
	set   bool
}

// FlagOf returns a set Flag holding v.
func FlagOf(v bool) Flag { return Flag{value: v, set: true} }

// Value returns the flag, false when unset.
func (f Flag) Value() bool { return f.value }

// Valid reports whether the device sent a value.
func (f Flag) Valid() bool { return f.set }

// UnmarshalJSON accepts true/false, 0/1 and their quoted forms.
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw, ok, err := scalarText(data)
	if err != nil {
		return err
	}
	if !ok {
		*f = Flag{}
		return nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		*f = FlagOf(true)
	case "false", "0", "no":
		*f = FlagOf(false)
	default:
		return fmt.Errorf("%q is not a boolean", raw)
	}
	return nil
}

// MarshalJSON writes null for unset values.
func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return strconv.AppendBool(nil, f.value), nil
}

// Text is a free-form field. Some firmware builds send these as bare numbers,
// so any JSON scalar is accepted and kept in its text form.
type Text string

func (t Text) String() string { return string(t) }

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	raw, _, err := scalarText(data)
	if err != nil {
		return err
	}
	*t = Text(raw)
	return nil
}

// scalarText unwraps a JSON scalar into its text form. ok is false for null and "".
func scalarText(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	}
	if data[0] == '{' || data[0] == '[' {
		return "", false, fmt.Errorf("expected scalar, got %s", responseSnippet(data))
	}
	return string(data), true, nil
}
