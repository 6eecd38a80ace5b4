package http

import (
	"context"
	"net/http"
	"time"

	"itnfit/pkg/jwt"
	"itnfit/pkg/logger"
	"itnfit/services/points/internal/notifier"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler pushes ledger change notices to connected clients. Messages
// only say that something changed; clients re-query balance and history.
type StreamHandler struct {
	redisClient *redis.Client
	jwtService  *jwt.Service
	logger      *logger.Logger
}

func NewStreamHandler(redisClient *redis.Client, jwtService *jwt.Service, logger *logger.Logger) *StreamHandler {
	return &StreamHandler{
		redisClient: redisClient,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// HandleWebSocket godoc
// @Summary      Points change stream
// @Description  WebSocket that emits an event whenever the member's ledger changes. Browsers pass the JWT in the token query parameter.
// @Tags         points
// @Param        token query string true "JWT"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /points/ws [get]
func (h *StreamHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil || claims.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("Points stream connected for user %s", userID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.redisClient.Subscribe(ctx, notifier.Channel(userID))
	defer pubsub.Close()

	go h.writeLoop(ctx, conn, pubsub.Channel())

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Points stream read error for user %s: %v", userID, err)
			}
			break
		}
	}

	h.logger.Info("Points stream disconnected for user %s", userID)
}

func (h *StreamHandler) writeLoop(ctx context.Context, conn *websocket.Conn, messages <-chan *redis.Message) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Error("Failed to write points stream message: %v", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
