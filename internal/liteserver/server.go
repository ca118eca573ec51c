// Package liteserver implements the server side of the lite-server protocol:
// a TCP dispatcher that runs the ADNL handshake per connection, decodes
// queries, invokes a handler service and sends back correlated answers.
package liteserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tonwire/tonwire/internal/adnl"
	"github.com/tonwire/tonwire/internal/liteapi"
	"github.com/tonwire/tonwire/internal/logging"
	"github.com/tonwire/tonwire/internal/metrics"
)

// acceptBackoff is how long the accept loop pauses after an unexpected
// accept error such as running out of file descriptors.
const acceptBackoff = time.Second

// Config contains optional server settings.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Factory, when set, builds a fresh handler per accepted connection so
	// handlers may keep per-connection state. The handler passed to
	// NewServer serves connections when Factory is nil.
	Factory func() liteapi.Service
}

// Server accepts ADNL connections under a static private key and dispatches
// lite queries to a handler. Per-connection state is confined to the
// connection's own task; a failing connection never affects the others.
type Server struct {
	key     *adnl.PrivateKey
	svc     liteapi.MessageService
	factory func() liteapi.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewServer builds a server around a handler service. Handler errors are
// converted to Error responses with code 500 and never tear down the
// connection; pings are answered by the envelope layer without reaching the
// handler.
func NewServer(key *adnl.PrivateKey, handler liteapi.Service, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Server{
		key:     key,
		svc:     liteapi.UnwrapMessages(liteapi.WrapError(handler)),
		factory: cfg.Factory,
		logger:  logger.With(logging.KeyComponent, "liteserver"),
		metrics: cfg.Metrics,
	}
}

// isConnectionError reports whether an accept error belongs to a single
// doomed connection rather than the listener.
func isConnectionError(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET)
}

// Serve accepts connections until the context is cancelled. Connection-scoped
// accept errors are ignored; every other accept error, a closed listener
// included, is logged and retried after a one second back-off, matching the
// behavior expected when the process runs out of file descriptors.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if isConnectionError(err) {
				continue
			}
			s.logger.Error("accept error", logging.KeyError, err)
			select {
			case <-time.After(acceptBackoff):
				continue
			case <-ctx.Done():
			}
			break
		}

		g.Go(func() error {
			s.handleConn(ctx, conn)
			return nil
		})
	}

	return g.Wait()
}

// handleConn owns one accepted socket: handshake, then a receive-dispatch-
// respond loop until the transport fails or the context ends.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	logger := s.logger.With(logging.KeyRemoteAddr, conn.RemoteAddr().String())

	peer, err := adnl.Server(conn, s.key)
	if err != nil {
		s.metrics.HandshakeFailed()
		logger.Warn("handshake failed", logging.KeyError, err)
		conn.Close()
		return
	}
	s.metrics.ConnOpened()
	defer func() {
		peer.Close()
		s.metrics.ConnClosed()
	}()
	logger.Debug("connection established")

	stop := context.AfterFunc(ctx, func() { peer.Close() })
	defer stop()

	svc := s.svc
	if s.factory != nil {
		svc = liteapi.UnwrapMessages(liteapi.WrapError(s.factory()))
	}

	for {
		payload, err := peer.Receive()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				logger.Debug("connection closed", logging.KeyError, err)
			}
			return
		}
		s.metrics.PacketReceived(len(payload))
		if len(payload) == 0 {
			continue
		}

		// Codec failures are fatal for the frame only; the connection and
		// its keystreams remain usable.
		msg, err := liteapi.DecodeMessage(payload)
		if err != nil {
			logger.Warn("dropping undecodable packet", logging.KeyError, err)
			continue
		}

		reply, err := svc.Call(ctx, msg)
		if err != nil {
			logger.Warn("dropping unhandled message", logging.KeyError, err)
			continue
		}

		data := liteapi.EncodeMessage(reply)
		if err := peer.Send(data); err != nil {
			logger.Warn("send failed", logging.KeyError, err)
			return
		}
		s.metrics.PacketSent(len(data))
	}
}
