package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type HubController struct {
	Hub      *hub.Hub
	Upgrader websocket.Upgrader
}

// NewHubController accepts upgrades from any origin in allowed when it is non-empty.
func NewHubController(h *hub.Hub, allowed []string) *HubController {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}
	return &HubController{
		Hub: h,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

// BookingBoard -> websocket stream of booking events for staff
func (hc *HubController) BookingBoard(c *gin.Context) {
	role := c.GetString(middlewares.CtxRole)
	if !models.IsStaffRole(role) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := hc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	hc.Hub.Register(ws, role)
	defer hc.Hub.Unregister(ws)

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// WriteControl may run alongside the hub's broadcast writes
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// clients only listen; reading keeps control frames flowing and notices disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))
	}
}
