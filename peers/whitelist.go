package peers

import (
	"context"
	"errors"
	"strings"
)

// ErrRemovalRefused indicates the node answered a removal request with false.
var ErrRemovalRefused = errors.New("peers: node refused removal")

// Remover issues a peer removal against the node. *rpc.Client satisfies it.
type Remover interface {
	RemovePeer(ctx context.Context, enode string) (bool, error)
}

// Whitelist decides which peers to keep based on client-name substrings.
// An entry matches any peer whose name contains it, so "reth" matches every
// reth-family version string. The allowlist is fixed at construction; build
// a new Whitelist to apply a different policy.
type Whitelist struct {
	allowed []string
}

// NewWhitelist builds a Whitelist from the given allowlist entries. Entries
// are trimmed and blank ones dropped.
func NewWhitelist(allowed []string) Whitelist {
	entries := make([]string, 0, len(allowed))
	for _, entry := range allowed {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return Whitelist{allowed: entries}
}

// Entries returns a copy of the active allowlist.
func (w Whitelist) Entries() []string {
	return append([]string(nil), w.allowed...)
}

// Decision records the keep/remove verdict for a single peer.
type Decision struct {
	Peer Peer
	Keep bool
}

// Classify evaluates every peer against the allowlist. A peer is kept when
// its name contains at least one allowlist entry; peers without a name are
// never kept.
func (w Whitelist) Classify(list []Peer) []Decision {
	decisions := make([]Decision, 0, len(list))
	for _, peer := range list {
		decisions = append(decisions, Decision{Peer: peer, Keep: w.keeps(peer)})
	}
	return decisions
}

func (w Whitelist) keeps(peer Peer) bool {
	name := strings.TrimSpace(peer.Name)
	if name == "" {
		return false
	}
	for _, entry := range w.allowed {
		if strings.Contains(name, entry) {
			return true
		}
	}
	return false
}

// Report summarises a decision set without issuing any removals.
type Report struct {
	Total          int
	ToKeep         int
	ToRemove       int
	RemoveByClient map[string]int
}

// DryRun tallies a decision set: how many peers stay, how many would be
// removed, and the removals grouped by client family.
func DryRun(decisions []Decision) Report {
	report := Report{
		Total:          len(decisions),
		RemoveByClient: make(map[string]int),
	}
	for _, decision := range decisions {
		if decision.Keep {
			report.ToKeep++
			continue
		}
		report.ToRemove++
		report.RemoveByClient[decision.Peer.ClientFamily()]++
	}
	return report
}

// Failure records one removal that did not succeed.
type Failure struct {
	Peer Peer
	Err  error
}

// Result reports the outcome of a live purge. Attempted counts actual
// removal calls; Skipped counts peers slated for removal that had no enode
// to target.
type Result struct {
	Attempted int
	Removed   int
	Failed    int
	Skipped   int
	Failures  []Failure
}

// Purge removes every peer classified as not kept, one removal call at a
// time. Individual failures are recorded and the batch continues; a failing
// removal never aborts the remaining ones. Peers without an enode cannot be
// targeted and are counted as skipped.
func Purge(ctx context.Context, remover Remover, decisions []Decision) Result {
	var result Result
	for _, decision := range decisions {
		if decision.Keep {
			continue
		}
		if strings.TrimSpace(decision.Peer.Enode) == "" {
			result.Skipped++
			continue
		}

		result.Attempted++
		removed, err := remover.RemovePeer(ctx, decision.Peer.Enode)
		if err == nil && !removed {
			err = ErrRemovalRefused
		}
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{Peer: decision.Peer, Err: err})
			continue
		}
		result.Removed++
	}
	return result
}
