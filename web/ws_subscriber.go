package web

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/infigaming-com/gold-monitor/util"
)

const (
	closeGracePeriod = time.Second
	maxMessageSize   = 4096
)

// wsSubscriber adapts a websocket connection to hub.Subscriber. The registry
// serialises Send calls; Close may race with them.
type wsSubscriber struct {
	id   string
	conn *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{id: util.NewUUID(), conn: conn}
}

func (s *wsSubscriber) ID() string {
	return s.id
}

func (s *wsSubscriber) Send(ctx context.Context, payload []byte) error {
	deadline, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSubscriber) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// readLoop drains client frames until the connection fails. Clients are not
// expected to send anything; reading is what notices a disconnect.
func (s *wsSubscriber) readLoop() error {
	s.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return err
		}
	}
}
