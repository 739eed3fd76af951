package snmp

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gosnmp/gosnmp"
)

// typeTag matches the "TYPE: " prefix some agents and tools leave on values.
var typeTag = regexp.MustCompile(`^(?i:STRING|INTEGER|Counter32|Counter64|Gauge32|TimeTicks|Hex-STRING|OID|IpAddress):\s*`)

const cutset = " \t\"'"

// Normalize cleans a raw agent payload: control and NUL characters are
// removed, surrounding whitespace and quotes trimmed, and a leading type tag
// stripped.
func Normalize(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	s = strings.Trim(s, cutset)
	s = typeTag.ReplaceAllString(s, "")
	return strings.Trim(s, cutset)
}

// decodePDU converts a varbind into its normalized string form. The second
// return is false for exception types and empty payloads.
func decodePDU(pdu gosnmp.SnmpPDU) (string, bool) {
	var raw string
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return "", false
	case gosnmp.OctetString, gosnmp.BitString, gosnmp.Opaque:
		raw = pduString(pdu.Value)
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		raw = pduString(pdu.Value)
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32,
		gosnmp.TimeTicks, gosnmp.Uinteger32:
		if pdu.Value == nil {
			return "", false
		}
		raw = gosnmp.ToBigInt(pdu.Value).String()
	default:
		raw = pduString(pdu.Value)
	}
	s := Normalize(raw)
	return s, s != ""
}

func pduString(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
