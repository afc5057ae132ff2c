// Package report writes scan results as a terminal table, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/ui"
)

// Peer is the serialised form of discovery.PeerInfo. Identifiers are
// decimal strings because they do not fit in a JSON number.
type Peer struct {
	ID             string    `json:"id" yaml:"id"`
	Address        string    `json:"address" yaml:"address"`
	SourcePort     uint16    `json:"source_port" yaml:"source_port"`
	Host           string    `json:"host" yaml:"host"`
	Namespaces     int       `json:"namespaces" yaml:"namespaces"`
	DisplayName    string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	AdvertisedPort uint16    `json:"advertised_port" yaml:"advertised_port"`
	Version        string    `json:"version" yaml:"version"`
	FirstSeen      time.Time `json:"first_seen" yaml:"first_seen"`
}

// Document is the top-level JSON/YAML object
type Document struct {
	Count int    `json:"count" yaml:"count"`
	Peers []Peer `json:"peers" yaml:"peers"`
}

// NewDocument converts a result set, keeping the address ordering of
// ResultSet.Peers
func NewDocument(rs *discovery.ResultSet) Document {
	peers := rs.Peers()
	doc := Document{Count: len(peers), Peers: make([]Peer, 0, len(peers))}
	for _, p := range peers {
		doc.Peers = append(doc.Peers, Peer{
			ID:             p.ID.String(),
			Address:        p.IP().String(),
			SourcePort:     p.Addr.Port(),
			Host:           p.Host,
			Namespaces:     p.Namespaces,
			DisplayName:    p.DisplayName,
			AdvertisedPort: p.AdvertisedPort,
			Version:        p.Version,
			FirstSeen:      p.FirstSeen,
		})
	}
	return doc
}

// Write renders rs to w in the named format
func Write(w io.Writer, format string, rs *discovery.ResultSet) error {
	switch format {
	case config.FormatTable:
		_, err := fmt.Fprintln(w, ui.RenderPeers(rs))
		return err

	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(rs)); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil

	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(rs)); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown format %q (expected one of %v)", format, config.Formats)
	}
}
