package ws

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shadabshaukat/DELTAV2/pkg/plugin"
)

const writeWait = 2 * time.Second

// WSOutput broadcasts every sample as JSON to the clients connected on /ws.
type WSOutput struct {
	addr     string
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	server   *http.Server
	listener net.Listener
}

func init() {
	plugin.RegisterOutput("ws", New)
}

func New(cfg plugin.OutputConfig) (plugin.Output, error) {
	if cfg.Listen == "" {
		return nil, plugin.NewError(plugin.KindConfig, "ws", "new_output", fmt.Errorf("listen address is required"))
	}
	return &WSOutput{
		addr:    cfg.Listen,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

func (w *WSOutput) Name() string { return "ws" }

func (w *WSOutput) Start() error {
	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("ws listen: %w", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", w.handleWS)

	w.mu.Lock()
	w.listener = ln
	w.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	srv := w.server
	w.mu.Unlock()

	go srv.Serve(ln)
	return nil
}

// Addr is the bound listen address, valid after Start.
func (w *WSOutput) Addr() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.listener == nil {
		return w.addr
	}
	return w.listener.Addr().String()
}

func (w *WSOutput) handleWS(rw http.ResponseWriter, req *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, req, nil)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.clients[conn] = true
	w.mu.Unlock()

	// Drain control frames so closes from the client are noticed.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				w.drop(conn)
				return
			}
		}
	}()
}

func (w *WSOutput) drop(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.clients[conn] {
		delete(w.clients, conn)
		conn.Close()
	}
}

func (w *WSOutput) clientCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// Send never fails the run for a slow or gone client; such clients are
// disconnected instead.
func (w *WSOutput) Send(s plugin.Sample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for c := range w.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(s); err != nil {
			delete(w.clients, c)
			c.Close()
		}
	}
	return nil
}

func (w *WSOutput) Stop() error {
	w.mu.Lock()
	srv := w.server
	w.server = nil
	for c := range w.clients {
		c.Close()
		delete(w.clients, c)
	}
	w.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
