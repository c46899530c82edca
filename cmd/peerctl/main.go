package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"peerctl/config"
	"peerctl/observability/logging"
	"peerctl/peers"
	"peerctl/rpc"
)

// adminClient is the slice of the RPC client the commands need; tests
// substitute a stub through dialNode.
type adminClient interface {
	NodeInfo(ctx context.Context) (rpc.NodeInfo, error)
	Peers(ctx context.Context) ([]peers.Peer, error)
	RemovePeer(ctx context.Context, enode string) (bool, error)
	Close() error
}

var dialNode = func(path string, timeout time.Duration, logger *slog.Logger) (adminClient, error) {
	return rpc.Dial(path, rpc.WithTimeout(timeout), rpc.WithLogger(logger))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("peerctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage())
	}
	configPath := fs.String("config", "", "path to TOML config file")
	allow := fs.String("allow", "", "comma-separated client allowlist, overrides the config file")
	timeoutFlag := fs.String("timeout", "", "per-call timeout, e.g. 10s")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	command, ipcArg, ok := splitArgs(fs.Args(), stderr)
	if !ok {
		return 1
	}
	if !validCommand(command) {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", command)
		fmt.Fprintln(stderr, usage())
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if strings.TrimSpace(*allow) != "" {
		cfg.AllowedClients = splitList(*allow)
	}
	if strings.TrimSpace(*timeoutFlag) != "" {
		cfg.RequestTimeout = *timeoutFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ipcPath := cfg.ResolveIPCPath(ipcArg)
	if strings.TrimSpace(ipcPath) == "" {
		fmt.Fprintln(stderr, "Error: IPC socket path is required")
		fmt.Fprintln(stderr, usage())
		return 1
	}

	logger := logging.Setup(stderr, "peerctl", *verbose)

	client, err := dialNode(ipcPath, timeout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer client.Close()

	ctx := context.Background()
	whitelist := peers.NewWhitelist(cfg.AllowedClients)

	switch command {
	case "peer-summary":
		return runPeerSummary(ctx, client, stdout, stderr)
	case "peer-list":
		return runPeerList(ctx, client, stdout, stderr)
	case "peer-purge-dry-run":
		return runPurge(ctx, client, whitelist, true, stdout, stderr)
	case "peer-purge":
		return runPurge(ctx, client, whitelist, false, stdout, stderr)
	default:
		return runInfo(ctx, client, stdout, stderr)
	}
}

// splitArgs resolves the positional arguments into a command and an optional
// socket path. A lone argument containing a path separator is treated as the
// socket path, matching the documented invocation styles.
func splitArgs(rest []string, stderr io.Writer) (command, ipcArg string, ok bool) {
	command = "info"
	switch len(rest) {
	case 0:
	case 1:
		if strings.ContainsAny(rest[0], `/\`) {
			ipcArg = rest[0]
		} else {
			command = rest[0]
		}
	case 2:
		command, ipcArg = rest[0], rest[1]
	default:
		fmt.Fprintln(stderr, "Error: too many arguments")
		fmt.Fprintln(stderr, usage())
		return "", "", false
	}
	return command, ipcArg, true
}

func validCommand(command string) bool {
	switch command {
	case "info", "peer-summary", "peer-list", "peer-purge-dry-run", "peer-purge":
		return true
	}
	return false
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

func usage() string {
	return strings.TrimSpace(`Usage:
  peerctl [flags] [command] [ipc-path]
  IPC_SOCKET=/path/to/node.ipc peerctl [flags] [command]

Commands:
  info (default)      Show client version, block number and peer count
  peer-summary        Show peer statistics and client breakdown
  peer-list           Show name and enode for every connected peer
  peer-purge-dry-run  Show which peers the whitelist would remove
  peer-purge          Remove peers whose client name is not whitelisted

Flags:
  --config   path to TOML config file
  --allow    comma-separated client allowlist, overrides the config file
  --timeout  per-call timeout, e.g. 10s
  --verbose  enable debug logging

Examples:
  peerctl /data/node/runtime/ipc/geth.ipc
  peerctl peer-summary /data/node/runtime/ipc/geth.ipc
  IPC_SOCKET=/data/node/runtime/ipc/reth.ipc peerctl peer-purge-dry-run`)
}
