package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{hub: hub}
}

// Handle -> endpoint WebSocket, role dari query ?role= (default staff)
func (kc *KDSController) Handle(c *gin.Context) {
	role := c.DefaultQuery("role", kds.RoleStaff)
	if !kds.IsValidRole(role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown role"))
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	kc.hub.Register(ws, role)

	// Baca pesan sampai client menutup koneksi
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.hub.Unregister(ws)
}
