package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/billiard-pos/utils"
)

const (
	queueSize     = 256
	clientBuffer  = 64
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxReadLength = 512
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	Time  time.Time   `json:"timestamp"`
}

// Hub menampung semua client dashboard dan antrean broadcast
type Hub struct {
	clients map[*Client]struct{}
	mutex   sync.Mutex
	queue   chan Message
	done    chan struct{}
	once    sync.Once
}

// Client is one connected dashboard.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		queue:   make(chan Message, queueSize),
		done:    make(chan struct{}),
	}
}

// Run mengirim pesan dari antrean ke semua client sampai Stop dipanggil
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.queue:
			h.broadcast(msg)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Publish queues an event. It never blocks: when the queue is full the event is dropped.
func (h *Hub) Publish(event string, data interface{}) {
	msg := Message{Event: event, Data: data, Time: time.Now()}
	select {
	case h.queue <- msg:
	default:
		utils.ErrorLogger.Printf("Hub queue full, dropping %s event", event)
	}
}

// ClientCount -> jumlah client yang terhubung
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Register -> menambahkan connection dan memulai write loop
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
		hub:  h,
	}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()

	go c.writePump()
	utils.InfoLogger.Printf("Dashboard client %s connected", c.ID)
	return c
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(c *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mutex.Unlock()
	utils.InfoLogger.Printf("Dashboard client %s disconnected", c.ID)
}

// ReadPump drains client frames until the connection drops, then unregisters it.
// Clients only listen, so incoming payloads are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxReadLength)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				utils.ErrorLogger.Printf("Error sending message to client %s: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast -> fungsi internal untuk mengirim pesan
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// client lambat, putuskan
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
