package net

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Paint3D/internal/state"
)

// ErrShareEnded means the host closed the share.
var ErrShareEnded = errors.New("share ended by host")

// Follow mirrors a shared canvas into store until ctx is done or the host
// goes away. The first op from the host is a full snapshot. A nil error
// means ctx ended the session.
func Follow(ctx context.Context, url string, store *state.Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", url, err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadlineSoon())
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()

	logger.Info("Following share", zap.String("url", url))
	for {
		var op state.Op
		if err := conn.ReadJSON(&op); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrShareEnded
			}
			return fmt.Errorf("share connection: %w", err)
		}
		store.Apply(op)
	}
}

func deadlineSoon() time.Time { return time.Now().Add(time.Second) }
