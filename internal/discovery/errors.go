package discovery

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes fatal scan failures the caller may want to
// handle differently
type ErrorKind int

const (
	// KindGeneric covers bind, parse and runtime I/O failures
	KindGeneric ErrorKind = iota
	// KindAddressInUse means another process holds the discovery port
	KindAddressInUse
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "Discovery Error"
	case KindAddressInUse:
		return "Address In Use"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// ErrAddressInUse matches any *Error of kind KindAddressInUse via errors.Is
var ErrAddressInUse = errors.New("discovery port already in use")

// Error is a fatal scan failure. Decode and lookup problems never produce
// one; they are absorbed where they happen.
type Error struct {
	Kind    ErrorKind // Category of failure
	Op      string    // "bind" or "read"
	Network string    // "udp4", "udp6"
	Addr    string    // Local address involved
	Err     error     // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s %s", e.Kind, e.Op, e.Network, e.Addr)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAddressInUse and e is of that kind
func (e *Error) Is(target error) bool {
	return target == ErrAddressInUse && e.Kind == KindAddressInUse
}

func bindError(err error, network, addr string) *Error {
	kind := KindGeneric
	if isAddrInUse(err) {
		kind = KindAddressInUse
	}
	return &Error{Kind: kind, Op: "bind", Network: network, Addr: addr, Err: err}
}

func readError(err error, network, addr string) *Error {
	return &Error{Kind: KindGeneric, Op: "read", Network: network, Addr: addr, Err: err}
}

// IsAddressInUse checks if err reports that the discovery port is taken
func IsAddressInUse(err error) bool {
	return errors.Is(err, ErrAddressInUse)
}

// Troubleshooting returns user-facing hints for a scan failure
func Troubleshooting(err error) []string {
	if IsAddressInUse(err) {
		return []string{
			"The discovery port might already be in use by the sync client itself",
			"If the client is running on this computer, exit it and re-run the scan",
			"Check for another running copy of lanscan",
		}
	}
	return []string{
		"Try again; if the problem persists, run with --log-level debug",
		"Check that a local firewall allows inbound UDP on the discovery port",
		"Binding privileged ports may require elevated permissions",
	}
}
