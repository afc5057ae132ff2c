package beacon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// wireID is the JSON form of an ID: a bare, non-negative integer literal
type wireID ID

func (w *wireID) UnmarshalJSON(data []byte) error {
	id, err := ParseID(string(data))
	if err != nil {
		return err
	}
	*w = wireID(id)
	return nil
}

func (w wireID) MarshalJSON() ([]byte, error) {
	return []byte(ID(w).String()), nil
}

// wirePacket mirrors the datagram layout. Pointers distinguish a missing
// field from a zero value.
type wirePacket struct {
	HostInt     *wireID   `json:"host_int"`
	Version     *[]uint   `json:"version"`
	DisplayName *string   `json:"displayname"`
	Port        *uint16   `json:"port"`
	Namespaces  *[]wireID `json:"namespaces"`
}

// Decode turns one received datagram into an announcement.
//
// ok is false only for an empty datagram, meaning there is nothing to decode.
// For any non-empty input ok is true and pkt is nil when the payload is not a
// well-formed announcement. Decode never returns an error: unrelated traffic
// on the port must not stop the listener.
func Decode(data []byte) (pkt *Packet, ok bool) {
	if len(data) == 0 {
		return nil, false
	}
	pkt, err := Parse(data)
	if err != nil {
		return nil, true
	}
	return pkt, true
}

// Parse strictly decodes an announcement payload and reports why it was
// rejected. Unknown fields, missing fields and trailing data are errors.
func Parse(data []byte) (*Packet, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("payload is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wirePacket
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("malformed announcement: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("malformed announcement: trailing data after object")
	}

	var missing []string
	if w.HostInt == nil {
		missing = append(missing, "host_int")
	}
	if w.Version == nil {
		missing = append(missing, "version")
	}
	if w.DisplayName == nil {
		missing = append(missing, "displayname")
	}
	if w.Port == nil {
		missing = append(missing, "port")
	}
	if w.Namespaces == nil {
		missing = append(missing, "namespaces")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("malformed announcement: missing %s", strings.Join(missing, ", "))
	}

	namespaces := make([]ID, len(*w.Namespaces))
	for i, ns := range *w.Namespaces {
		namespaces[i] = ID(ns)
	}

	return &Packet{
		HostInt:     ID(*w.HostInt),
		Version:     *w.Version,
		DisplayName: *w.DisplayName,
		Port:        *w.Port,
		Namespaces:  namespaces,
	}, nil
}

// Encode renders a packet in wire format. The scanner itself never
// transmits; Encode exists for fixtures and capture tooling.
func Encode(p *Packet) ([]byte, error) {
	version := p.Version
	if version == nil {
		version = []uint{}
	}
	namespaces := make([]wireID, len(p.Namespaces))
	for i, ns := range p.Namespaces {
		namespaces[i] = wireID(ns)
	}
	hostInt := wireID(p.HostInt)
	displayName := p.DisplayName
	port := p.Port

	return json.Marshal(&wirePacket{
		HostInt:     &hostInt,
		Version:     &version,
		DisplayName: &displayName,
		Port:        &port,
		Namespaces:  &namespaces,
	})
}
