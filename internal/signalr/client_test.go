package signalr

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sep = []byte{recordSeparator}

// testHub accepts one websocket connection, answers the protocol handshake
// and exposes channels to observe and inject hub records.
type testHub struct {
	received chan []byte
	send     chan []byte
	drop     chan struct{}
}

func startTestHub(t *testing.T) (*testHub, string) {
	t.Helper()
	h := &testHub{
		received: make(chan []byte, 32),
		send:     make(chan []byte, 32),
		drop:     make(chan struct{}),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()

		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		h.received <- bytes.TrimSuffix(data, sep)
		if err := conn.Write(ctx, websocket.MessageText, append([]byte("{}"), sep...)); err != nil {
			return
		}

		go func() {
			for {
				_, data, err := conn.Read(ctx)
				if err != nil {
					return
				}
				for _, rec := range bytes.Split(data, sep) {
					if len(rec) > 0 {
						h.received <- rec
					}
				}
			}
		}()

		for {
			select {
			case msg := <-h.send:
				if err := conn.Write(ctx, websocket.MessageText, append(msg, sep...)); err != nil {
					return
				}
			case <-h.drop:
				conn.Close(websocket.StatusGoingAway, "server shutdown")
				return
			case <-ctx.Done():
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recvRecord(t *testing.T, h *testHub) []byte {
	t.Helper()
	select {
	case rec := <-h.received:
		return rec
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
		return nil
	}
}

func TestStartPerformsHandshake(t *testing.T) {
	h, url := startTestHub(t)
	c := NewClient(url, zap.NewNop())
	c.Subscribe(nil, nil)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())

	var hs handshakeRequest
	require.NoError(t, json.Unmarshal(recvRecord(t, h), &hs))
	assert.Equal(t, "json", hs.Protocol)
	assert.Equal(t, 1, hs.Version)
}

func TestSendWritesInvocation(t *testing.T) {
	h, url := startTestHub(t)
	c := NewClient(url, zap.NewNop())
	c.Subscribe(nil, nil)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())
	recvRecord(t, h) // handshake

	type payload struct {
		HostName string `json:"hostName"`
	}
	require.NoError(t, c.Send(context.Background(), "CreateRoom", payload{HostName: "Alice"}))

	var msg hubMessage
	require.NoError(t, json.Unmarshal(recvRecord(t, h), &msg))
	assert.Equal(t, msgTypeInvocation, msg.Type)
	assert.Equal(t, "CreateRoom", msg.Target)
	assert.NotEmpty(t, msg.InvocationID)
	require.Len(t, msg.Arguments, 1)

	var got payload
	require.NoError(t, json.Unmarshal(msg.Arguments[0], &got))
	assert.Equal(t, "Alice", got.HostName)
}

func TestSendBeforeStartFailsFast(t *testing.T) {
	c := NewClient("ws://127.0.0.1:0", zap.NewNop())
	err := c.Send(context.Background(), "CreateRoom")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestInboundInvocationDispatched(t *testing.T) {
	h, url := startTestHub(t)
	c := NewClient(url, zap.NewNop())

	type invocation struct {
		target string
		args   []json.RawMessage
	}
	got := make(chan invocation, 1)
	c.Subscribe(func(target string, args []json.RawMessage) {
		got <- invocation{target: target, args: args}
	}, nil)

	require.NoError(t, c.Start(context.Background()))
	defer c.Stop(context.Background())
	recvRecord(t, h) // handshake

	h.send <- []byte(`{"type":1,"target":"Error","arguments":["Room not found"]}`)

	select {
	case inv := <-got:
		assert.Equal(t, "Error", inv.target)
		require.Len(t, inv.args, 1)
		assert.JSONEq(t, `"Room not found"`, string(inv.args[0]))
	case <-time.After(2 * time.Second):
		t.Fatal("invocation not dispatched")
	}
}

func TestServerDropFiresClosedOnce(t *testing.T) {
	h, url := startTestHub(t)
	c := NewClient(url, zap.NewNop())

	closed := make(chan error, 2)
	c.Subscribe(nil, func(err error) { closed <- err })

	require.NoError(t, c.Start(context.Background()))
	recvRecord(t, h) // handshake
	close(h.drop)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("closed callback never fired")
	}

	select {
	case <-closed:
		t.Fatal("closed callback fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopSuppressesClosedCallback(t *testing.T) {
	h, url := startTestHub(t)
	c := NewClient(url, zap.NewNop())

	closed := make(chan error, 1)
	c.Subscribe(nil, func(err error) { closed <- err })

	require.NoError(t, c.Start(context.Background()))
	recvRecord(t, h) // handshake
	require.NoError(t, c.Stop(context.Background()))

	select {
	case <-closed:
		t.Fatal("explicit stop must not fire the closed callback")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDialFailure(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1", zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, c.Start(ctx))
}
