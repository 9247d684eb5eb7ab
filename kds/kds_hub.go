package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/events"
	"github.com/yeremiapane/restaurant-orders/utils"
)

// Role yang boleh membuka layar KDS
const (
	RoleChef   = "chef"
	RoleStaff  = "staff"
	RoleWaiter = "waiter"
	RoleAdmin  = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleChef, RoleStaff, RoleWaiter, RoleAdmin:
		return true
	}
	return false
}

const (
	// Batas waktu satu kali tulis ke client
	writeWait = 10 * time.Second
	// Jumlah pesan yang boleh antre per client sebelum client dianggap lambat
	sendBuffer = 64
)

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub menampung semua client KDS (chef, staff, admin) dan menyiarkan event
// order ke mereka. Setiap client punya antrean dan goroutine penulis
// sendiri, jadi Notify tidak pernah menunggu jaringan.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
	}
}

// Register -> menambahkan connection ke set dengan role
func (h *Hub) Register(conn *websocket.Conn, role string) {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go h.writePump(c)
	utils.InfoLogger.WithField("role", role).Info("KDS client connected")
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		h.drop(c)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify menyiarkan event ke semua client. Client yang antreannya penuh
// dianggap lambat dan dilepas.
func (h *Hub) Notify(_ context.Context, evt events.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s event: %v", evt.Type, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   evt.Type,
		"clients": len(h.clients),
	}).Debug("Broadcasting event")

	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithField("role", c.role).Error("KDS client too slow, dropping it")
			h.drop(c)
		}
	}
}

// drop must be called with the mutex held.
func (h *Hub) drop(c *client) {
	delete(h.clients, c.conn)
	close(c.send)
	c.conn.Close()
}

// writePump mengirim antrean client sampai antrean ditutup atau tulis gagal.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("role", c.role).Errorf("Error sending message to client: %v", err)
			h.Unregister(c.conn)
			return
		}
	}
}
