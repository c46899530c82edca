package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"peerctl/peers"
)

func runInfo(ctx context.Context, client adminClient, stdout, stderr io.Writer) int {
	info, err := client.NodeInfo(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Client version: %s\n", info.ClientVersion)
	fmt.Fprintf(stdout, "Block number:   %s\n", groupDigits(int64(info.BlockNumber)))
	fmt.Fprintf(stdout, "Peer count:     %d\n", info.PeerCount)
	return 0
}

func runPeerSummary(ctx context.Context, client adminClient, stdout, stderr io.Writer) int {
	list, err := client.Peers(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No peers connected")
		return 0
	}

	summary := peers.Summarize(list)
	fmt.Fprintf(stdout, "Total peers: %d\n", summary.Total)
	if len(summary.Protocols) > 0 {
		fmt.Fprintf(stdout, "Protocols:   %s\n", strings.Join(summary.Protocols, ", "))
	}
	fmt.Fprintf(stdout, "Inbound:     %d\n", summary.Inbound)
	fmt.Fprintf(stdout, "Outbound:    %d\n", summary.Outbound)
	fmt.Fprintf(stdout, "Trusted:     %d\n", summary.Trusted)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Clients:")
	writeCountTable(stdout, summary.Clients, summary.Total, 28)

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Versions:")
	writeCountTable(stdout, summary.Versions, summary.Total, 68)
	return 0
}

func runPeerList(ctx context.Context, client adminClient, stdout, stderr io.Writer) int {
	list, err := client.Peers(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No peers connected")
		return 0
	}

	for _, peer := range list {
		name := peer.Name
		if strings.TrimSpace(name) == "" {
			name = peers.UnknownClient
		}
		enode := peer.Enode
		if strings.TrimSpace(enode) == "" {
			enode = peers.UnknownClient
		}
		fmt.Fprintf(stdout, "%s\t%s\n", name, enode)
	}
	fmt.Fprintf(stdout, "Total: %d peers\n", len(list))
	return 0
}

func runPurge(ctx context.Context, client adminClient, whitelist peers.Whitelist, dryRun bool, stdout, stderr io.Writer) int {
	list, err := client.Peers(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(list) == 0 {
		fmt.Fprintln(stdout, "No peers connected")
		return 0
	}

	decisions := whitelist.Classify(list)
	report := peers.DryRun(decisions)

	mode := "Peer purge"
	if dryRun {
		mode = "Peer purge (dry run)"
	}
	fmt.Fprintln(stdout, mode)
	fmt.Fprintf(stdout, "Total peers: %d\n", report.Total)
	fmt.Fprintf(stdout, "To keep:     %d (%s)\n", report.ToKeep, percent(report.ToKeep, report.Total))
	fmt.Fprintf(stdout, "To remove:   %d (%s)\n", report.ToRemove, percent(report.ToRemove, report.Total))

	if report.ToRemove > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Removals by client:")
		writeCountTable(stdout, report.RemoveByClient, report.ToRemove, 28)
	}
	if dryRun {
		return 0
	}

	result := peers.Purge(ctx, client, decisions)
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Attempted: %d\n", result.Attempted)
	fmt.Fprintf(stdout, "Removed:   %d\n", result.Removed)
	fmt.Fprintf(stdout, "Failed:    %d\n", result.Failed)
	if result.Skipped > 0 {
		fmt.Fprintf(stdout, "Skipped:   %d (no enode)\n", result.Skipped)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(stdout, "  failed %s (%s): %v\n",
			truncate(failure.Peer.Name, 48), failure.Peer.RemoteAddress(), failure.Err)
	}
	// Partial per-peer failures are reported but do not fail the command.
	return 0
}
