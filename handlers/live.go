package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"agenda/services/admin"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
)

// liveRequest is what the admin panel sends after connecting.
type liveRequest struct {
	Type  string `json:"type"` // selectDate, selectMonth or ping
	Date  string `json:"date,omitempty"`
	Month string `json:"month,omitempty"`
}

// LiveHandler streams day and month updates to the admin panel over a websocket.
type LiveHandler struct {
	Service  admin.AdminService
	Upgrader websocket.Upgrader
}

// NewLiveHandler accepts handshakes from allowedOrigins; "*" admits any origin.
func NewLiveHandler(svc admin.AdminService, allowedOrigins []string) *LiveHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveHandler{
		Service: svc,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// liveConn serializes writes; gorilla allows one concurrent writer.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (lc *liveConn) writeJSON(v interface{}) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_ = lc.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return lc.conn.WriteJSON(v)
}

func (lc *liveConn) ping() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
}

// LiveHandler handles GET /api/pros/:id/admin/live.
func (h *LiveHandler) LiveHandler(c *gin.Context) {
	logger := getLogger(c).With(zap.String("professionalID", c.Param("id")))

	ws, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		logger.Warn("Live upgrade failed", zap.Error(err))
		return
	}
	lc := &liveConn{conn: ws}
	defer ws.Close()

	// Watches outlive the handshake request, so they get their own context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := h.Service.OpenLiveSession(ctx, c.Param("id"), func(ev admin.LiveEvent) {
		if err := lc.writeJSON(ev); err != nil {
			logger.Debug("Live write failed", zap.Error(err))
		}
	})
	if err != nil {
		_ = lc.writeJSON(admin.LiveEvent{Type: admin.LiveEventError, Error: err.Error()})
		return
	}
	defer session.Close()
	logger.Info("Live session opened")

	ws.SetReadLimit(4096)
	_ = ws.SetReadDeadline(time.Now().Add(livePongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(livePongWait))
	})

	go func() {
		ticker := time.NewTicker(livePingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lc.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		var req liveRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Live session dropped", zap.Error(err))
			}
			logger.Info("Live session closed")
			return
		}

		var selErr error
		switch req.Type {
		case "selectDate":
			selErr = session.SelectDate(ctx, req.Date)
		case "selectMonth":
			selErr = session.SelectMonth(ctx, req.Month)
		case "ping":
			selErr = lc.writeJSON(gin.H{"type": "pong"})
		default:
			_ = lc.writeJSON(admin.LiveEvent{Type: admin.LiveEventError, Error: "unknown message type " + req.Type})
			continue
		}
		if selErr != nil {
			logger.Warn("Live selection failed", zap.String("type", req.Type), zap.Error(selErr))
			_ = lc.writeJSON(admin.LiveEvent{Type: admin.LiveEventError, Error: selErr.Error()})
		}
	}
}
