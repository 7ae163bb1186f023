// Package net shares a live canvas with viewers on the local network: a
// WebSocket hub on the painting side, a follower on the viewing side, and
// mDNS discovery between them.
package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Paint3D/internal/state"
)

// SharePath is where the hub accepts viewers.
const SharePath = "/ws"

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	peerQueue    = 256
	maxInboundSz = 512
)

// Hub streams a store's ops to every connected viewer. Viewers are read
// only: anything they send is discarded.
type Hub struct {
	store    *state.Store
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	peers  map[*peer]struct{}
	closed bool
	wg     sync.WaitGroup

	unsubscribe func()
}

type peer struct {
	conn *websocket.Conn
	send chan state.Op
}

// NewHub starts forwarding store ops. Call Close to disconnect everyone
// and stop listening to the store.
func NewHub(store *state.Store, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		store:  store,
		logger: logger,
		peers:  make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Viewers are other Paint3D processes, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	h.unsubscribe = store.Subscribe(h.broadcast)
	return h
}

// Peers is the number of connected viewers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) broadcast(op state.Op) {
	h.mu.RLock()
	var slow []*peer
	for p := range h.peers {
		select {
		case p.send <- op:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range slow {
		h.logger.Warn("Viewer too slow, disconnecting", zap.String("addr", p.conn.RemoteAddr().String()))
		h.remove(p)
		p.conn.Close()
	}
}

// remove unregisters p and closes its queue. Safe to call more than once.
func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	close(p.send)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	addr := conn.RemoteAddr().String()

	p := &peer{conn: conn, send: make(chan state.Op, peerQueue)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.peers[p] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	// Registered first, snapshot second: every op is either in the
	// snapshot or carries a higher sequence number.
	snap := h.store.Snapshot()
	h.logger.Info("Viewer connected", zap.String("addr", addr), zap.Int("strokes", len(snap.Strokes)))

	go h.writeLoop(p, snap)
	go h.readLoop(p)
}

func (h *Hub) writeLoop(p *peer, snap state.Op) {
	defer h.wg.Done()
	defer p.conn.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := h.write(p, snap); err != nil {
		h.remove(p)
		return
	}
	for {
		select {
		case op, ok := <-p.send:
			if !ok {
				p.conn.SetWriteDeadline(time.Now().Add(writeWait))
				p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if op.Seq <= snap.Seq {
				continue
			}
			if err := h.write(p, op); err != nil {
				h.remove(p)
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.remove(p)
				return
			}
		}
	}
}

func (h *Hub) write(p *peer, op state.Op) error {
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteJSON(op); err != nil {
		h.logger.Debug("Write to viewer failed", zap.String("addr", p.conn.RemoteAddr().String()), zap.Error(err))
		return err
	}
	return nil
}

func (h *Hub) readLoop(p *peer) {
	defer h.wg.Done()
	defer h.remove(p)

	p.conn.SetReadLimit(maxInboundSz)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			h.logger.Info("Viewer disconnected", zap.String("addr", p.conn.RemoteAddr().String()), zap.Error(err))
			return
		}
	}
}

// Close disconnects every viewer and waits for their goroutines.
func (h *Hub) Close() {
	h.unsubscribe()

	h.mu.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
		delete(h.peers, p)
		close(p.send)
	}
	h.mu.Unlock()

	// The write loops send a close frame and shut their connections; the
	// read loops follow once the connection is gone.
	h.wg.Wait()
	h.logger.Debug("Hub closed", zap.Int("viewers", len(peers)))
}

// Serve runs an HTTP server for the hub on ln until ctx is done, then
// shuts the server down and closes the hub.
func Serve(ctx context.Context, ln net.Listener, hub *Hub, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle(SharePath, hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Share server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("share server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		hub.Close()
		return err
	})
	return g.Wait()
}
