// Package status pushes assembly progress to browser clients over websocket.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
)

type Status struct {
	Message  string
	Time     time.Time
	Type     int
	Progress float32
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames and notices the client going away
func (c *client) readPump() {
	defer c.hub.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub keeps the last message and fans every new one out to all clients.
// Slow clients lose messages instead of blocking the sender.
type Hub struct {
	lock        sync.Mutex
	clients     map[*client]bool
	lastMessage []byte
	upgrader    websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and subscribes the connection
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[status] ws upgrade error: %v", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}

	h.lock.Lock()
	h.clients[c] = true
	if h.lastMessage != nil {
		c.send <- h.lastMessage
	}
	h.lock.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) Status(msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	data, err := json.Marshal(&Status{
		Message:  msg,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress})
	if err != nil {
		panic(err)
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	h.lastMessage = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), INFO, 0.0)
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func (h *Hub) Progress(progress float32, format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), PROGRESS, progress)
}

// MergeProgress adapts the hub to merge.WithProgress
func (h *Hub) MergeProgress(name string) func(done, total int) {
	return func(done, total int) {
		h.Progress(float32(done)/float32(total), "%s: bone %d of %d", name, done, total)
	}
}
