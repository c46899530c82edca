package peers

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedPeer(name string, inbound, trusted bool, protocols ...string) Peer {
	peer := Peer{
		Enode:   "enode://aa@10.0.0.1:30303",
		Name:    name,
		Network: &Network{Inbound: inbound, Trusted: trusted, RemoteAddress: "10.0.0.1:30303"},
	}
	if len(protocols) > 0 {
		peer.Protocols = make(map[string]json.RawMessage, len(protocols))
		for _, protocol := range protocols {
			peer.Protocols[protocol] = json.RawMessage(`{}`)
		}
	}
	return peer
}

func TestSummarizeCounts(t *testing.T) {
	list := []Peer{
		namedPeer("Geth/v1.14.13-stable/linux-amd64/go1.23.2", true, false, "eth", "snap"),
		namedPeer("Geth/v1.14.12-stable/linux-amd64/go1.23.1", false, true, "eth"),
		namedPeer("BeraGeth/v1.011602.3/linux-amd64/go1.24.6", true, false, "eth"),
	}

	summary := Summarize(list)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[string]int{"Geth": 2, "BeraGeth": 1}, summary.Clients)
	assert.Equal(t, []string{"eth", "snap"}, summary.Protocols)
	assert.Equal(t, 2, summary.Inbound)
	assert.Equal(t, 1, summary.Outbound)
	assert.Equal(t, 1, summary.Trusted)
	assert.Equal(t, 1, summary.Versions["Geth/v1.14.13-stable/linux-amd64/go1.23.2"])
}

func TestSummarizeUnknownAndMissingNetwork(t *testing.T) {
	unnamed := Peer{Enode: "enode://bb@10.0.0.2:30303", Protocols: map[string]json.RawMessage{"mystery": json.RawMessage(`{}`)}}
	list := []Peer{
		namedPeer("Geth/v1.14.13-stable/linux-amd64/go1.23.2", true, false, "eth"),
		unnamed,
	}

	summary := Summarize(list)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Clients[UnknownClient])
	// Unnamed peers are counted but excluded from protocol and version
	// aggregation.
	assert.NotContains(t, summary.Protocols, "mystery")
	assert.Len(t, summary.Versions, 1)
	// The unnamed peer has no network info, so it appears in neither
	// direction tally.
	assert.Equal(t, 1, summary.Inbound+summary.Outbound)
}

func TestSummarizeInvariants(t *testing.T) {
	list := []Peer{
		namedPeer("Geth/v1.14.13-stable/linux-amd64/go1.23.2", true, false, "eth"),
		namedPeer("BeraGeth/v1.011602.3/linux-amd64/go1.24.6", false, false, "eth"),
		namedPeer("reth/v1.6.0-48941e6/x86_64-unknown-linux-gnu", true, true, "eth"),
		{Enode: "enode://cc@10.0.0.3:30303"},
	}

	summary := Summarize(list)

	familySum := 0
	for _, count := range summary.Clients {
		familySum += count
	}
	require.Equal(t, summary.Total, familySum, "family counts must sum to total")

	withNetwork := 0
	for _, peer := range list {
		if peer.Network != nil {
			withNetwork++
		}
	}
	require.Equal(t, withNetwork, summary.Inbound+summary.Outbound,
		"inbound+outbound must equal peers reporting network info")
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Protocols)
	assert.Empty(t, summary.Clients)
}

func TestClientFamily(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{name: "Geth/v1.14.13-stable/linux-amd64/go1.23.2", want: "Geth"},
		{name: "reth", want: "reth"},
		{name: "", want: UnknownClient},
		{name: "   ", want: UnknownClient},
	}
	for i, tc := range cases {
		peer := Peer{Name: tc.name}
		assert.Equal(t, tc.want, peer.ClientFamily(), fmt.Sprintf("case %d", i))
	}
}
