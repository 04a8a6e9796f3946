package wsrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

type recorder struct {
	mu       sync.Mutex
	payloads []echoInput
	types    []string
	errs     []error
	done     chan struct{}
}

func TestServeConn(t *testing.T) {
	rec := &recorder{done: make(chan struct{})}

	mux := New()
	mux.Use(func(next HandlerFunc[any]) HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			rec.mu.Lock()
			rec.types = append(rec.types, GetMessageTypeFromCtx(ctx))
			rec.mu.Unlock()
			return next(ctx, conn, payload)
		}
	})
	mux.HandleError(func(_ context.Context, _ *websocket.Conn, err error) {
		rec.mu.Lock()
		rec.errs = append(rec.errs, err)
		rec.mu.Unlock()
	})
	Handle(mux, "ECHO", func(_ context.Context, _ *websocket.Conn, input echoInput) error {
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, input)
		rec.mu.Unlock()
		return nil
	})
	Handle(mux, "DONE", func(_ context.Context, _ *websocket.Conn, _ struct{}) error {
		close(rec.done)
		return nil
	})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mux.ServeConn(context.Background(), conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ECHO","payload":{"text":"hi"}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ECHO","payload":{"text":1}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"NOPE"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"DONE"}`)))

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("messages were not handled")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []echoInput{{Text: "hi"}}, rec.payloads)
	assert.Equal(t, []string{"ECHO", "DONE"}, rec.types)
	require.Len(t, rec.errs, 2)
	assert.ErrorIs(t, rec.errs[0], ErrInvalidPayload)
	assert.ErrorIs(t, rec.errs[1], ErrUnknownMessageType)
}
