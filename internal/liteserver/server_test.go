package liteserver

import (
	"context"
	"crypto/rand"
	"net"
	"testing"
	"time"

	"github.com/tonwire/tonwire/internal/adnl"
	"github.com/tonwire/tonwire/internal/liteapi"
)

func startServer(t *testing.T, handler liteapi.Service) (addr string, key *adnl.PrivateKey) {
	t.Helper()

	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(serverKey, handler, Config{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String(), serverKey
}

func dialPeer(t *testing.T, addr string, key adnl.PublicKey) *adnl.Peer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	peer, err := adnl.Dial(ctx, addr, key)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })
	return peer
}

func timeService() liteapi.Service {
	return liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		return liteapi.CurrentTime{Now: 1700000000}, nil
	})
}

func TestServerAnswersQuery(t *testing.T) {
	addr, key := startServer(t, timeService())
	peer := dialPeer(t, addr, key.Public())

	tag, err := liteapi.RandomInt256()
	if err != nil {
		t.Fatal(err)
	}
	query := liteapi.Query{
		QueryId: tag,
		Query:   liteapi.LiteQuery{WrappedRequest: liteapi.WrappedRequest{Request: liteapi.GetTime{}}},
	}
	if err := peer.Send(liteapi.EncodeMessage(query)); err != nil {
		t.Fatal(err)
	}

	payload, err := peer.Receive()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := liteapi.DecodeMessage(payload)
	if err != nil {
		t.Fatal(err)
	}
	answer, ok := msg.(liteapi.Answer)
	if !ok {
		t.Fatalf("reply = %T", msg)
	}
	if answer.QueryId != tag {
		t.Error("correlation tag not echoed")
	}
	if _, ok := answer.Answer.(liteapi.CurrentTime); !ok {
		t.Errorf("payload = %T", answer.Answer)
	}
}

func TestServerAnswersPingWithoutHandler(t *testing.T) {
	handler := liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		t.Error("handler invoked for a ping")
		return nil, nil
	})
	addr, key := startServer(t, handler)
	peer := dialPeer(t, addr, key.Public())

	if err := peer.Send(liteapi.EncodeMessage(liteapi.Ping{RandomId: 0xbeef})); err != nil {
		t.Fatal(err)
	}
	payload, err := peer.Receive()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := liteapi.DecodeMessage(payload)
	if err != nil {
		t.Fatal(err)
	}
	if msg != (liteapi.Pong{RandomId: 0xbeef}) {
		t.Fatalf("reply = %#v", msg)
	}
}

func TestServerSurvivesBadHandshake(t *testing.T) {
	addr, key := startServer(t, timeService())

	// A connection that sends 256 bytes of garbage instead of a handshake
	// must be dropped without affecting the listener.
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	garbage := make([]byte, 256)
	if _, err := rand.Read(garbage); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(garbage); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	// A well-behaved connection still works.
	peer := dialPeer(t, addr, key.Public())
	if err := peer.Send(liteapi.EncodeMessage(liteapi.Ping{RandomId: 1})); err != nil {
		t.Fatal(err)
	}
	if _, err := peer.Receive(); err != nil {
		t.Fatalf("receive after bad sibling connection: %v", err)
	}
}

func TestServerSkipsUndecodableFrame(t *testing.T) {
	addr, key := startServer(t, timeService())
	peer := dialPeer(t, addr, key.Public())

	// A well-framed packet that is not a TL message is dropped; the
	// connection keeps serving.
	if err := peer.Send([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}); err != nil {
		t.Fatal(err)
	}
	if err := peer.Send(liteapi.EncodeMessage(liteapi.Ping{RandomId: 2})); err != nil {
		t.Fatal(err)
	}

	payload, err := peer.Receive()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := liteapi.DecodeMessage(payload)
	if err != nil {
		t.Fatal(err)
	}
	if msg != (liteapi.Pong{RandomId: 2}) {
		t.Fatalf("reply = %#v", msg)
	}
}

func TestServerShutdownClosesConnections(t *testing.T) {
	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(serverKey, timeService(), Config{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()

	peer := dialPeer(t, ln.Addr().String(), serverKey.Public())

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	// The established connection is torn down with the server.
	if _, err := peer.Receive(); err == nil {
		t.Error("receive succeeded after server shutdown")
	}
}

func TestServerFactoryBuildsPerConnectionHandlers(t *testing.T) {
	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	// Each connection gets its own query counter.
	factory := func() liteapi.Service {
		var count uint32
		return liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
			count++
			return liteapi.CurrentTime{Now: count}, nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(serverKey, nil, Config{Factory: factory})
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	ask := func(peer *adnl.Peer) uint32 {
		t.Helper()
		tag, err := liteapi.RandomInt256()
		if err != nil {
			t.Fatal(err)
		}
		query := liteapi.Query{
			QueryId: tag,
			Query:   liteapi.LiteQuery{WrappedRequest: liteapi.WrappedRequest{Request: liteapi.GetTime{}}},
		}
		if err := peer.Send(liteapi.EncodeMessage(query)); err != nil {
			t.Fatal(err)
		}
		payload, err := peer.Receive()
		if err != nil {
			t.Fatal(err)
		}
		msg, err := liteapi.DecodeMessage(payload)
		if err != nil {
			t.Fatal(err)
		}
		return msg.(liteapi.Answer).Answer.(liteapi.CurrentTime).Now
	}

	first := dialPeer(t, ln.Addr().String(), serverKey.Public())
	if got := ask(first); got != 1 {
		t.Errorf("first connection, first query = %d", got)
	}
	if got := ask(first); got != 2 {
		t.Errorf("first connection, second query = %d", got)
	}

	second := dialPeer(t, ln.Addr().String(), serverKey.Public())
	if got := ask(second); got != 1 {
		t.Errorf("second connection starts at %d, want a fresh handler", got)
	}
}
