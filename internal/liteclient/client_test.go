package liteclient

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/tonwire/tonwire/internal/adnl"
	"github.com/tonwire/tonwire/internal/liteapi"
	"github.com/tonwire/tonwire/internal/liteserver"
)

// startServer runs a liteserver with the given handler on a loopback
// listener and returns the dial target.
func startServer(t *testing.T, handler liteapi.Service) (addr string, key adnl.PublicKey) {
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
	srv := liteserver.NewServer(serverKey, handler, liteserver.Config{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String(), serverKey.Public()
}

func connect(t *testing.T, addr string, key adnl.PublicKey) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Connect(ctx, addr, key, Config{})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func clockService() liteapi.Service {
	return liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		switch req.Request.(type) {
		case liteapi.GetTime:
			return liteapi.CurrentTime{Now: 1700000000}, nil
		case liteapi.GetVersion:
			return liteapi.Version{Version: 0x101, Now: 1700000000}, nil
		default:
			return liteapi.Error{Code: 501, Message: "not implemented"}, nil
		}
	})
}

func TestQueryRoundTrip(t *testing.T) {
	addr, key := startServer(t, clockService())
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.GetTime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Now != 1700000000 {
		t.Errorf("now = %d", result.Now)
	}
}

func TestServerErrorSurfacesAndConnectionSurvives(t *testing.T) {
	handler := liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		switch req.Request.(type) {
		case liteapi.GetTime:
			return liteapi.CurrentTime{Now: 42}, nil
		default:
			return liteapi.Error{Code: 404, Message: "not found"}, nil
		}
	})
	addr, key := startServer(t, handler)
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetVersion(ctx)
	var serverErr *liteapi.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if serverErr.Code != 404 || serverErr.Message != "not found" {
		t.Errorf("server error = %+v", serverErr)
	}

	// Subsequent calls on the same connection succeed.
	result, err := client.GetTime(ctx)
	if err != nil {
		t.Fatalf("follow-up query: %v", err)
	}
	if result.Now != 42 {
		t.Errorf("now = %d", result.Now)
	}
}

func TestHandlerErrorBecomes500(t *testing.T) {
	handler := liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		return nil, errors.New("kaboom")
	})
	addr, key := startServer(t, handler)
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetTime(ctx)
	var serverErr *liteapi.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if serverErr.Code != 500 {
		t.Errorf("code = %d, want 500", serverErr.Code)
	}
}

func TestConcurrentQueries(t *testing.T) {
	addr, key := startServer(t, clockService())
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const calls = 32
	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.GetTime(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("call %d: %v", i, err)
		}
	}
}

// reorderServer accepts one connection, reads three queries and answers them
// in reverse arrival order, each with the response type matching its request.
func reorderServer(t *testing.T) (addr string, key adnl.PublicKey) {
	t.Helper()

	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		peer, err := adnl.Server(conn, serverKey)
		if err != nil {
			conn.Close()
			return
		}
		defer peer.Close()

		var answers []liteapi.Answer
		for len(answers) < 3 {
			payload, err := peer.Receive()
			if err != nil {
				return
			}
			msg, err := liteapi.DecodeMessage(payload)
			if err != nil {
				continue
			}
			query, ok := msg.(liteapi.Query)
			if !ok {
				continue
			}
			var resp liteapi.Response
			switch query.Query.WrappedRequest.Request.(type) {
			case liteapi.GetTime:
				resp = liteapi.CurrentTime{Now: 1}
			case liteapi.GetVersion:
				resp = liteapi.Version{Version: 2}
			default:
				resp = liteapi.MasterchainInfo{}
			}
			answers = append(answers, liteapi.Answer{QueryId: query.QueryId, Answer: resp})
		}

		// Reverse arrival order: the last query is answered first.
		for i := len(answers) - 1; i >= 0; i-- {
			if err := peer.Send(liteapi.EncodeMessage(answers[i])); err != nil {
				return
			}
		}
		// Keep the connection open until the client is done.
		peer.Receive()
	}()

	return ln.Addr().String(), serverKey.Public()
}

func TestOutOfOrderAnswersCorrelateByTag(t *testing.T) {
	addr, key := reorderServer(t)
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var timeErr, versionErr, mcErr error
	var timeResp liteapi.CurrentTime
	var versionResp liteapi.Version

	wg.Add(3)
	go func() {
		defer wg.Done()
		timeResp, timeErr = client.GetTime(ctx)
	}()
	// Stagger dispatch so the server observes a deterministic arrival
	// order; answers come back reversed.
	time.Sleep(100 * time.Millisecond)
	go func() {
		defer wg.Done()
		versionResp, versionErr = client.GetVersion(ctx)
	}()
	time.Sleep(100 * time.Millisecond)
	go func() {
		defer wg.Done()
		_, mcErr = client.GetMasterchainInfo(ctx)
	}()
	wg.Wait()

	// Each call resolved with the answer bearing its own tag; a crossover
	// would have failed the per-method response type assertion.
	if timeErr != nil || timeResp.Now != 1 {
		t.Errorf("GetTime = %+v, %v", timeResp, timeErr)
	}
	if versionErr != nil || versionResp.Version != 2 {
		t.Errorf("GetVersion = %+v, %v", versionResp, versionErr)
	}
	if mcErr != nil {
		t.Errorf("GetMasterchainInfo: %v", mcErr)
	}
}

func TestUnknownTagDropped(t *testing.T) {
	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		peer, err := adnl.Server(conn, serverKey)
		if err != nil {
			conn.Close()
			return
		}
		defer peer.Close()

		payload, err := peer.Receive()
		if err != nil {
			return
		}
		msg, err := liteapi.DecodeMessage(payload)
		if err != nil {
			return
		}
		query := msg.(liteapi.Query)

		// First an answer under a tag nobody is waiting for, then the
		// real one. The bogus answer must be dropped without breaking
		// the awaiting call.
		bogusTag, _ := liteapi.RandomInt256()
		peer.Send(liteapi.EncodeMessage(liteapi.Answer{QueryId: bogusTag, Answer: liteapi.CurrentTime{Now: 666}}))
		peer.Send(liteapi.EncodeMessage(liteapi.Answer{QueryId: query.QueryId, Answer: liteapi.CurrentTime{Now: 7}}))
		peer.Receive()
	}()

	client := connect(t, ln.Addr().String(), serverKey.Public())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := client.GetTime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Now != 7 {
		t.Errorf("now = %d, want the genuinely correlated answer", result.Now)
	}
}

func TestCancellationReleasesSlot(t *testing.T) {
	// A handler that never answers the first query.
	var once sync.Once
	block := make(chan struct{})
	handler := liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		var blocked bool
		once.Do(func() {
			blocked = true
			<-block
		})
		if blocked {
			return liteapi.Error{Code: 500, Message: "late"}, nil
		}
		return liteapi.CurrentTime{Now: 5}, nil
	})
	defer close(block)

	addr, key := startServer(t, handler)
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := client.GetTime(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}

	client.mu.Lock()
	registered := len(client.pending)
	client.mu.Unlock()
	if registered != 0 || len(client.slots) != 0 {
		t.Errorf("after cancellation: %d tags registered, %d in-flight slots held", registered, len(client.slots))
	}
}

func TestTransportFailureFailsInFlight(t *testing.T) {
	serverKey, err := adnl.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan *adnl.Peer, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		peer, err := adnl.Server(conn, serverKey)
		if err != nil {
			conn.Close()
			return
		}
		accepted <- peer
	}()

	client := connect(t, ln.Addr().String(), serverKey.Public())
	peer := <-accepted

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const calls = 4
	var wg sync.WaitGroup
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.GetTime(ctx)
		}(i)
	}

	// Let the queries get dispatched, then kill the transport.
	time.Sleep(200 * time.Millisecond)
	peer.Close()
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			t.Errorf("call %d unexpectedly succeeded", i)
		}
	}

	// The multiplexer is terminated; later calls fail immediately.
	if _, err := client.GetTime(context.Background()); err == nil {
		t.Error("query after transport failure succeeded")
	}
}

func TestWaitMasterchainSeqnoAttachedOnce(t *testing.T) {
	var mu sync.Mutex
	var waits []*liteapi.WaitMasterchainSeqno
	handler := liteapi.ServiceFunc(func(ctx context.Context, req *liteapi.WrappedRequest) (liteapi.Response, error) {
		mu.Lock()
		waits = append(waits, req.WaitMasterchainSeqno)
		mu.Unlock()
		return liteapi.CurrentTime{Now: 1}, nil
	})
	addr, key := startServer(t, handler)
	client := connect(t, addr, key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client.WaitMasterchainSeqno(34771699, 0)
	if _, err := client.GetTime(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := client.GetTime(ctx); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(waits) != 2 {
		t.Fatalf("handler saw %d requests", len(waits))
	}
	if waits[0] == nil {
		t.Fatal("first request missing the wait option")
	}
	if waits[0].Seqno != 34771699 {
		t.Errorf("seqno = %d", waits[0].Seqno)
	}
	if waits[0].TimeoutMs != 10000 {
		t.Errorf("timeout_ms = %d, want the 10000 default", waits[0].TimeoutMs)
	}
	if waits[1] != nil {
		t.Error("wait option leaked into the second request")
	}
}
