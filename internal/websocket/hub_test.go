package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	hub        *Hub
	server     *httptest.Server
	registered chan string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{hub: NewHub(), registered: make(chan string, 8)}
	go ts.hub.Run()

	upgrader := websocket.Upgrader{}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(ts.hub, conn, r.URL.Query().Get("owner"))
		ts.hub.Register(client)
		ts.registered <- client.OwnerID

		go client.WritePump()
		go client.ReadPump(func(c *Client, message []byte) {
			if string(message) == "ping" {
				c.Reply(NewPongMessage())
			}
		})
	}))

	t.Cleanup(func() {
		ts.server.Close()
		ts.hub.Stop()
	})
	return ts
}

func (ts *testServer) dial(t *testing.T, owner string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/?owner=" + owner
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case got := <-ts.registered:
		require.Equal(t, owner, got)
	case <-time.After(2 * time.Second):
		t.Fatal("client was not registered")
	}
	return conn
}

func TestNotifyReachesOnlyTheOwner(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice")
	aliceSecond := ts.dial(t, "alice")
	bob := ts.dial(t, "bob")

	event := notify.NewExpenseEvent(notify.ExpenseCreated, models.Expense{ID: "e1", OwnerID: "alice", Amount: 500})
	require.NoError(t, ts.hub.Notify(context.Background(), event))

	for _, conn := range []*websocket.Conn{alice, aliceSecond} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Action  string             `json:"action"`
			Payload notify.ExpenseEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "expense.created", msg.Action)
		assert.Equal(t, "e1", msg.Payload.Expense.ID)
		assert.Equal(t, models.Amount(500), msg.Payload.Expense.Amount)
	}

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestReplyGoesToSender(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"pong","payload":null}`, string(data))
}

func TestStopClosesClients(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "alice")

	ts.hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Publishing after shutdown does not block.
	assert.NoError(t, ts.hub.Notify(context.Background(), notify.ExpenseEvent{OwnerID: "alice"}))
}

func TestNotifyHonoursContextWhenBacklogged(t *testing.T) {
	// Run is not started, so nothing drains the publish buffer.
	hub := NewHub()
	event := notify.ExpenseEvent{OwnerID: "alice"}
	for i := 0; i < cap(hub.publish); i++ {
		require.NoError(t, hub.Notify(context.Background(), event))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Notify(ctx, event), context.Canceled)
}

func TestErrorMessage(t *testing.T) {
	assert.JSONEq(t, `{"action":"error","payload":{"message":"nope"}}`, string(NewErrorMessage("nope")))
}
