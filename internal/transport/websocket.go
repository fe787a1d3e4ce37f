// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "beatviz/internal/log"
)

// WebSocketTransport serves snapshots as JSON to every connected
// client. Broadcasts go through a buffered channel; when the channel
// is full the snapshot is dropped, never queued behind a slow client.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Snapshot
	server    *http.Server
	done      chan struct{}
	closeOnce sync.Once
}

func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Snapshot, 256),
		done:      make(chan struct{}),
	}
	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", wst.handleClient)
	wst.server = &http.Server{Addr: wst.addr, Handler: mux}

	go func() {
		applog.Infof("WebSocketTransport: serving frame snapshots on ws://%s/frames", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()
	go wst.run()
}

func (wst *WebSocketTransport) handleClient(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: upgrade failed: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: client connected, total: %d", total)

	// Clients never send application data; the read pump only exists
	// to notice the disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	if _, ok := wst.clients[conn]; ok {
		delete(wst.clients, conn)
		applog.Infof("WebSocketTransport: client disconnected, total: %d", len(wst.clients))
	}
	wst.clientsMu.Unlock()
	conn.Close()
}

func (wst *WebSocketTransport) run() {
	for {
		select {
		case <-wst.done:
			return
		case snap := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(snap); err != nil {
					applog.Debugf("WebSocketTransport: write failed, dropping client: %v", err)
					delete(wst.clients, client)
					client.Close()
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

func (wst *WebSocketTransport) Send(snap Snapshot) error {
	select {
	case wst.broadcast <- snap:
	default:
		// Full queue: drop the frame. The next one is 16ms away.
	}
	return nil
}

// Close disconnects every client, stops the broadcast goroutine and
// shuts the HTTP server down. Safe to call more than once.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
