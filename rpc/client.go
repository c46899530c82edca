// Package rpc implements a multiplexed JSON-RPC client for a node's local
// administrative IPC endpoint. Requests and responses are single JSON
// objects separated by newlines on one shared stream connection; a
// monotonically increasing id correlates each response with the caller that
// issued it, so arbitrarily many goroutines can share the connection.
package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"time"
)

// defaultCallTimeout bounds how long a single call waits for its response.
const defaultCallTimeout = 10 * time.Second

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the per-call response deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger routes client diagnostics to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client owns one IPC connection. Only the send path writes to it and only
// the background read loop reads from it. The client is unusable after the
// connection fails or Close is called; callers re-dial to recover.
type Client struct {
	conn    net.Conn
	logger  *slog.Logger
	timeout time.Duration
	metrics *clientMetrics

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan *jsonrpcResponse
	closed  bool

	// wmu serialises frame writes so concurrent callers cannot interleave
	// bytes on the stream.
	wmu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the IPC socket at path and starts the read loop. The
// socket path is checked first so a missing socket reports a distinct error
// from a refused connection.
func Dial(path string, opts ...Option) (*Client, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSocketNotFound, path)
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, path)
		}
		return nil, fmt.Errorf("rpc: dial %s: %w", path, err)
	}
	return NewClient(conn, opts...), nil
}

// NewClient wraps an existing connection. The client takes ownership of the
// connection and closes it on teardown.
func NewClient(conn net.Conn, opts ...Option) *Client {
	c := &Client{
		conn:    conn,
		logger:  slog.Default(),
		timeout: defaultCallTimeout,
		metrics: newClientMetrics(),
		nextID:  1,
		pending: make(map[uint64]chan *jsonrpcResponse),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

// Close tears down the connection. It is idempotent and safe to call while
// calls are in flight; those calls fail with ErrConnectionClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
	return nil
}

// Call issues a single request and blocks until the matching response
// arrives, the per-call deadline elapses, ctx is cancelled, or the
// connection closes. A non-nil result receives the decoded response value.
func (c *Client) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	id, ch, err := c.register()
	if err != nil {
		return err
	}

	c.metrics.callStarted()
	start := time.Now()
	outcome, err := c.roundTrip(ctx, id, ch, result, method, params)
	c.metrics.callFinished(method, outcome, time.Since(start))
	return err
}

func (c *Client) register() (uint64, chan *jsonrpcResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, nil, ErrClientClosed
	}
	id := c.nextID
	c.nextID++
	ch := make(chan *jsonrpcResponse, 1)
	c.pending[id] = ch
	return id, ch, nil
}

func (c *Client) deregister(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) roundTrip(ctx context.Context, id uint64, ch chan *jsonrpcResponse, result interface{}, method string, params []interface{}) (string, error) {
	if params == nil {
		params = []interface{}{}
	}
	frame, err := json.Marshal(jsonrpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		c.deregister(id)
		return "encode_error", fmt.Errorf("rpc: encode %s request: %w", method, err)
	}

	c.wmu.Lock()
	_, err = c.conn.Write(append(frame, '\n'))
	c.wmu.Unlock()
	if err != nil {
		c.deregister(id)
		return "write_error", fmt.Errorf("rpc: write %s request: %w", method, err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return c.finish(method, result, resp)
	case <-timer.C:
		// Remove the waiter so a late response cannot resurrect the call.
		c.deregister(id)
		return "timeout", fmt.Errorf("%w: %s", ErrTimeout, method)
	case <-ctx.Done():
		c.deregister(id)
		return "canceled", fmt.Errorf("rpc: %s: %w", method, ctx.Err())
	case <-c.done:
		// Prefer a response that raced the teardown.
		select {
		case resp := <-ch:
			return c.finish(method, result, resp)
		default:
			return "closed", fmt.Errorf("%w: %s", ErrConnectionClosed, method)
		}
	}
}

func (c *Client) finish(method string, result interface{}, resp *jsonrpcResponse) (string, error) {
	if resp.Error != nil {
		return "rpc_error", resp.Error
	}
	if result == nil {
		return "ok", nil
	}
	if len(resp.Result) == 0 {
		return "decode_error", &DecodeError{Method: method, Err: errors.New("missing result")}
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return "decode_error", &DecodeError{Method: method, Err: err}
	}
	return "ok", nil
}

// readLoop consumes newline-delimited frames for the lifetime of the
// connection. Malformed lines are logged and skipped; a single corrupt
// frame must not take down the multiplexed connection. On end-of-stream or
// read error every pending call is failed so no caller blocks forever.
func (c *Client) readLoop() {
	defer c.failPending()

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			c.dispatch(trimmed)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Warn("ipc read failed", "error", err)
			}
			return
		}
	}
}

func (c *Client) dispatch(line []byte) {
	var resp jsonrpcResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		c.logger.Warn("discarding malformed frame", "error", err)
		c.metrics.recordDropped("malformed")
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()

	if !ok {
		// Late response to a timed-out call, or an id we never issued.
		c.logger.Debug("dropping unmatched response", "id", resp.ID)
		c.metrics.recordDropped("unmatched")
		return
	}
	ch <- &resp
}

func (c *Client) failPending() {
	c.mu.Lock()
	c.closed = true
	abandoned := len(c.pending)
	for id := range c.pending {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	close(c.done)
	c.Close()

	if abandoned > 0 {
		c.logger.Warn("connection closed with calls in flight", "pending", abandoned)
	}
}
