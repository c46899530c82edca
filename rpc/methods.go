package rpc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"peerctl/peers"
)

const (
	methodClientVersion = "web3_clientVersion"
	methodBlockNumber   = "eth_blockNumber"
	methodPeerCount     = "net_peerCount"
	methodPeers         = "admin_peers"
	methodRemovePeer    = "admin_removePeer"
)

// ClientVersion reports the node's self-identification string.
func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.Call(ctx, &version, methodClientVersion); err != nil {
		return "", err
	}
	return version, nil
}

// BlockNumber reports the node's current head height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var raw string
	if err := c.Call(ctx, &raw, methodBlockNumber); err != nil {
		return 0, err
	}
	return parseHexQuantity(methodBlockNumber, raw)
}

// PeerCount reports the number of currently connected peers.
func (c *Client) PeerCount(ctx context.Context) (int, error) {
	var raw string
	if err := c.Call(ctx, &raw, methodPeerCount); err != nil {
		return 0, err
	}
	count, err := parseHexQuantity(methodPeerCount, raw)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Peers fetches the node's current peer set.
func (c *Client) Peers(ctx context.Context) ([]peers.Peer, error) {
	var list []peers.Peer
	if err := c.Call(ctx, &list, methodPeers); err != nil {
		return nil, err
	}
	return list, nil
}

// RemovePeer asks the node to drop the peer identified by enode from its
// local peer table.
func (c *Client) RemovePeer(ctx context.Context, enode string) (bool, error) {
	var removed bool
	if err := c.Call(ctx, &removed, methodRemovePeer, enode); err != nil {
		return false, err
	}
	return removed, nil
}

// NodeInfo bundles the basic health queries.
type NodeInfo struct {
	ClientVersion string
	BlockNumber   uint64
	PeerCount     int
}

// NodeInfo issues the client-version, block-number and peer-count queries
// concurrently over the shared connection and joins all three. Any single
// failure fails the whole lookup.
func (c *Client) NodeInfo(ctx context.Context) (NodeInfo, error) {
	var info NodeInfo
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		version, err := c.ClientVersion(ctx)
		if err != nil {
			return err
		}
		info.ClientVersion = version
		return nil
	})
	g.Go(func() error {
		height, err := c.BlockNumber(ctx)
		if err != nil {
			return err
		}
		info.BlockNumber = height
		return nil
	})
	g.Go(func() error {
		count, err := c.PeerCount(ctx)
		if err != nil {
			return err
		}
		info.PeerCount = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return NodeInfo{}, err
	}
	return info, nil
}

// parseHexQuantity decodes a 0x-prefixed hexadecimal quantity.
func parseHexQuantity(method, value string) (uint64, error) {
	digits, ok := strings.CutPrefix(strings.TrimSpace(value), "0x")
	if !ok || digits == "" {
		return 0, &DecodeError{Method: method, Err: fmt.Errorf("invalid hex quantity %q", value)}
	}
	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, &DecodeError{Method: method, Err: fmt.Errorf("invalid hex quantity %q: %w", value, err)}
	}
	return n, nil
}
