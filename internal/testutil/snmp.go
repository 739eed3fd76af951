package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/gosnmp/gosnmp"

	"github.com/HerbHall/printwatch/internal/snmp"
)

// ErrTimeout is returned by FakeTransport for unreachable addresses.
var ErrTimeout = errors.New("request timeout")

// Call records one transport request.
type Call struct {
	Address string
	OID     string
	Options snmp.Options
}

// FakeTransport is an in-memory snmp.Transport. OIDs without a configured
// response answer NoSuchObject; addresses marked down fail with ErrTimeout.
type FakeTransport struct {
	mu        sync.Mutex
	responses map[string]map[string]gosnmp.SnmpPDU
	down      map[string]bool
	calls     []Call

	// OnGet, when set, runs before each lookup.
	OnGet func(target snmp.Target, oid string)
}

// NewFakeTransport creates an empty fake.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		responses: make(map[string]map[string]gosnmp.SnmpPDU),
		down:      make(map[string]bool),
	}
}

// SetPDU configures the raw response for address and oid.
func (f *FakeTransport) SetPDU(address, oid string, pdu gosnmp.SnmpPDU) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.responses[address] == nil {
		f.responses[address] = make(map[string]gosnmp.SnmpPDU)
	}
	pdu.Name = oid
	f.responses[address][oid] = pdu
}

// SetString configures an OctetString response.
func (f *FakeTransport) SetString(address, oid, value string) {
	f.SetPDU(address, oid, gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte(value)})
}

// SetInt configures an Integer response.
func (f *FakeTransport) SetInt(address, oid string, value int) {
	f.SetPDU(address, oid, gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: value})
}

// SetDown marks an address as unreachable.
func (f *FakeTransport) SetDown(address string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[address] = down
}

// Get implements snmp.Transport.
func (f *FakeTransport) Get(ctx context.Context, target snmp.Target, oid string, opts snmp.Options) (gosnmp.SnmpPDU, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Address: target.Address, OID: oid, Options: opts})
	hook := f.OnGet
	f.mu.Unlock()

	if hook != nil {
		hook(target, oid)
	}
	if err := ctx.Err(); err != nil {
		return gosnmp.SnmpPDU{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down[target.Address] {
		return gosnmp.SnmpPDU{}, ErrTimeout
	}
	if pdu, ok := f.responses[target.Address][oid]; ok {
		return pdu, nil
	}
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.NoSuchObject}, nil
}

// Calls returns a copy of all recorded requests.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of requests sent to address.
func (f *FakeTransport) CallCount(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Address == address {
			n++
		}
	}
	return n
}
