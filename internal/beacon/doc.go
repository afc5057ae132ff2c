// Package beacon decodes LAN sync announcement datagrams.
//
// Peers of the LAN sync protocol periodically broadcast a small JSON document
// on UDP port 17500 describing themselves:
//
//	{
//	    "host_int": 123456789012345678901234567890,
//	    "version": [2, 0],
//	    "displayname": "",
//	    "port": 17500,
//	    "namespaces": [1234567, 7654321]
//	}
//
// host_int and every namespace are unsigned 128-bit integers encoded as bare
// JSON numbers, which is why this package carries its own ID type instead of
// relying on encoding/json's uint64 handling.
//
// # Tolerance
//
// Port 17500 is shared with whatever else happens to broadcast there, so
// Decode never fails. An empty datagram reports "nothing to do"; anything
// non-empty that is not a well-formed announcement is reported as foreign
// traffic. Parse exposes the underlying reason for tooling and tests.
package beacon
