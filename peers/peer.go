package peers

import (
	"encoding/json"
	"strings"
)

// UnknownClient is the client family assigned to peers that do not report a
// name. Such peers still count toward totals but never match a whitelist.
const UnknownClient = "Unknown"

// Peer mirrors one element of the admin_peers result. Protocols carries the
// per-protocol capability blobs undecoded; the analyzer only needs the keys.
type Peer struct {
	Enode     string                     `json:"enode"`
	Name      string                     `json:"name"`
	Network   *Network                   `json:"network"`
	Protocols map[string]json.RawMessage `json:"protocols"`
}

// Network describes the connection-level view the node has of a peer.
type Network struct {
	Inbound       bool   `json:"inbound"`
	Trusted       bool   `json:"trusted"`
	RemoteAddress string `json:"remoteAddress"`
}

// ClientFamily returns the leading token of the peer's self-reported name,
// the part before the first '/'. Peers without a name report UnknownClient.
func (p Peer) ClientFamily() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return UnknownClient
	}
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// RemoteAddress returns the peer's remote address or "unknown" when the node
// did not report network details.
func (p Peer) RemoteAddress() string {
	if p.Network == nil || strings.TrimSpace(p.Network.RemoteAddress) == "" {
		return "unknown"
	}
	return p.Network.RemoteAddress
}
