package peers

import "sort"

// Summary aggregates a peer list by client family, full version string and
// connection direction. It is recomputed from a fresh peer list on every
// invocation and never cached.
type Summary struct {
	Total     int
	Protocols []string
	Clients   map[string]int
	Versions  map[string]int
	Inbound   int
	Outbound  int
	Trusted   int
}

// Summarize builds a Summary from a peer list. Peers without a name are
// grouped under UnknownClient and excluded from protocol aggregation; peers
// without network details are excluded from the inbound/outbound/trusted
// tallies. The protocol list is sorted so output is deterministic.
func Summarize(list []Peer) Summary {
	summary := Summary{
		Total:    len(list),
		Clients:  make(map[string]int),
		Versions: make(map[string]int),
	}

	protocolSet := make(map[string]struct{})
	for _, peer := range list {
		family := peer.ClientFamily()
		summary.Clients[family]++
		if family != UnknownClient {
			summary.Versions[peer.Name]++
			for protocol := range peer.Protocols {
				protocolSet[protocol] = struct{}{}
			}
		}

		if peer.Network == nil {
			continue
		}
		if peer.Network.Inbound {
			summary.Inbound++
		} else {
			summary.Outbound++
		}
		if peer.Network.Trusted {
			summary.Trusted++
		}
	}

	summary.Protocols = make([]string, 0, len(protocolSet))
	for protocol := range protocolSet {
		summary.Protocols = append(summary.Protocols, protocol)
	}
	sort.Strings(summary.Protocols)

	return summary
}
