package snmp

import "strconv"

// Value is the outcome of a single probe: either a normalized, non-empty
// string reported by the agent, or Absent. Transport failures, SNMP error
// statuses and empty payloads all collapse into Absent.
type Value struct {
	s  string
	ok bool
}

// Present wraps a normalized reading. An empty string is treated as Absent.
func Present(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{s: s, ok: true}
}

// Absent returns the empty Value.
func Absent() Value { return Value{} }

// IsPresent reports whether the agent returned a usable value.
func (v Value) IsPresent() bool { return v.ok }

// Get returns the reading and whether it is present.
func (v Value) Get() (string, bool) { return v.s, v.ok }

// Or returns the reading, or def when absent.
func (v Value) Or(def string) string {
	if !v.ok {
		return def
	}
	return v.s
}

// Int parses the reading as a base-10 integer.
func (v Value) Int() (int, bool) {
	if !v.ok {
		return 0, false
	}
	n, err := strconv.Atoi(v.s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (v Value) String() string {
	if !v.ok {
		return "<absent>"
	}
	return v.s
}
