// Package liteclient implements the client side of the lite-server protocol:
// a connection multiplexer that issues concurrent queries over a single ADNL
// connection and correlates out-of-order answers by their 256-bit tag.
package liteclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tonwire/tonwire/internal/adnl"
	"github.com/tonwire/tonwire/internal/liteapi"
	"github.com/tonwire/tonwire/internal/logging"
	"github.com/tonwire/tonwire/internal/metrics"
)

const (
	// DefaultMaxInFlight bounds the number of queries awaiting answers. A
	// practical limit, not a protocol invariant.
	DefaultMaxInFlight = 100

	// DefaultWaitTimeout is the server-side wait budget attached to a
	// WaitMasterchainSeqno option when the caller does not specify one.
	DefaultWaitTimeout = 10 * time.Second
)

// ErrClosed is returned for in-flight and later queries once Close has been
// called. After a transport failure, queries fail with that failure instead.
var ErrClosed = errors.New("client closed")

// Config contains optional client settings.
type Config struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	MaxInFlight int
}

// Client multiplexes lite queries over one ADNL connection. All methods are
// safe for concurrent use. After a transport failure every in-flight and
// subsequent call fails with the same root cause; the client must be
// reconstructed.
type Client struct {
	peer    *adnl.Peer
	logger  *slog.Logger
	metrics *metrics.Metrics
	svc     liteapi.Service
	slots   chan struct{}

	mu      sync.Mutex
	pending map[liteapi.Int256]chan liteapi.Answer
	cause   error
	done    chan struct{}

	waitMu   sync.Mutex
	nextWait *liteapi.WaitMasterchainSeqno
}

// Connect dials addr, performs the handshake against the server's public key
// and starts the multiplexer.
func Connect(ctx context.Context, addr string, serverKey adnl.PublicKey, cfg Config) (*Client, error) {
	peer, err := adnl.Dial(ctx, addr, serverKey)
	if err != nil {
		cfg.Metrics.HandshakeFailed()
		return nil, err
	}
	return NewClient(peer, cfg), nil
}

// NewClient wraps an established ADNL peer. It takes ownership of the peer
// and starts the reader task.
func NewClient(peer *adnl.Peer, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}

	c := &Client{
		peer:    peer,
		logger:  logger.With(logging.KeyComponent, "liteclient"),
		metrics: cfg.Metrics,
		slots:   make(chan struct{}, maxInFlight),
		pending: make(map[liteapi.Int256]chan liteapi.Answer),
		done:    make(chan struct{}),
	}
	c.svc = liteapi.UnwrapError(liteapi.WrapMessages(liteapi.MessageServiceFunc(c.exchange)))
	c.metrics.ConnOpened()

	go c.readLoop()
	return c
}

// WaitMasterchainSeqno arranges for the next (and only the next) query to
// carry a WaitMasterchainSeqno option. A non-positive timeout selects the
// default.
func (c *Client) WaitMasterchainSeqno(seqno uint32, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	c.waitMu.Lock()
	c.nextWait = &liteapi.WaitMasterchainSeqno{
		Seqno:     seqno,
		TimeoutMs: uint32(timeout / time.Millisecond),
	}
	c.waitMu.Unlock()
}

func (c *Client) takeWait() *liteapi.WaitMasterchainSeqno {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()
	wait := c.nextWait
	c.nextWait = nil
	return wait
}

// Query sends one wrapped request and blocks until its answer arrives, the
// context is cancelled or the transport fails. Error responses surface as
// *liteapi.ServerError.
func (c *Client) Query(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
	if req.WaitMasterchainSeqno == nil {
		req.WaitMasterchainSeqno = c.takeWait()
	}

	start := time.Now()
	c.metrics.QueryStarted()
	resp, err := c.svc.Call(ctx, req)
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeCancelled
	case err != nil:
		outcome = metrics.OutcomeError
	}
	c.metrics.QueryFinished(outcome, time.Since(start).Seconds())
	return resp, err
}

// exchange is the message-level transport under the layer stack: it assigns
// the correlation tag, registers the answer slot, transmits the query and
// waits for its answer.
func (c *Client) exchange(ctx context.Context, msg liteapi.Message) (liteapi.Message, error) {
	query, ok := msg.(liteapi.Query)
	if !ok {
		return nil, fmt.Errorf("%w: client can only send queries, got %T", liteapi.ErrUnexpectedMessage, msg)
	}

	// Back-pressure: bounded number of in-flight queries.
	select {
	case c.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, c.failure()
	}
	defer func() { <-c.slots }()

	tag, err := liteapi.RandomInt256()
	if err != nil {
		return nil, err
	}
	query.QueryId = tag

	ch := make(chan liteapi.Answer, 1)
	c.mu.Lock()
	if c.cause != nil {
		err := c.cause
		c.mu.Unlock()
		return nil, err
	}
	c.pending[tag] = ch
	c.mu.Unlock()

	data := liteapi.EncodeMessage(query)
	if err := c.peer.Send(data); err != nil {
		c.deregister(tag)
		return nil, fmt.Errorf("send query: %w", err)
	}
	c.metrics.PacketSent(len(data))

	select {
	case answer := <-ch:
		return answer, nil
	case <-ctx.Done():
		// Release the tag slot immediately; a late answer is dropped.
		c.deregister(tag)
		return nil, ctx.Err()
	case <-c.done:
		return nil, c.failure()
	}
}

func (c *Client) deregister(tag liteapi.Int256) {
	c.mu.Lock()
	delete(c.pending, tag)
	c.mu.Unlock()
}

func (c *Client) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cause == nil {
		return ErrClosed
	}
	return c.cause
}

// readLoop continuously receives packets and routes answers to awaiting
// calls. Codec errors are logged and skipped; transport errors terminate the
// multiplexer and fail every in-flight call with the same cause.
func (c *Client) readLoop() {
	for {
		payload, err := c.peer.Receive()
		if err != nil {
			c.fail(err)
			return
		}
		c.metrics.PacketReceived(len(payload))
		if len(payload) == 0 {
			// Keep-alive; nothing to route.
			continue
		}

		msg, err := liteapi.DecodeMessage(payload)
		if err != nil {
			c.logger.Warn("dropping undecodable packet", logging.KeyError, err)
			continue
		}

		switch m := msg.(type) {
		case liteapi.Answer:
			c.dispatch(m)
		case liteapi.Pong:
			c.logger.Debug("pong received")
		default:
			c.logger.Warn("dropping unexpected message", "type", fmt.Sprintf("%T", msg))
		}
	}
}

func (c *Client) dispatch(answer liteapi.Answer) {
	c.mu.Lock()
	ch, ok := c.pending[answer.QueryId]
	if ok {
		delete(c.pending, answer.QueryId)
	}
	c.mu.Unlock()

	if !ok {
		c.metrics.AnswerDropped()
		c.logger.Warn("dropping answer with unknown tag", logging.KeyQueryId, answer.QueryId)
		return
	}
	ch <- answer
}

func (c *Client) fail(cause error) {
	c.mu.Lock()
	first := c.cause == nil
	if first {
		c.cause = cause
		close(c.done)
	}
	c.pending = make(map[liteapi.Int256]chan liteapi.Answer)
	c.mu.Unlock()

	if first {
		c.metrics.ConnClosed()
		c.peer.Close()
	}
}

// Close tears down the connection and fails all in-flight calls with
// ErrClosed.
func (c *Client) Close() error {
	c.fail(ErrClosed)
	return c.peer.Close()
}
