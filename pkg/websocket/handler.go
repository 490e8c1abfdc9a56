package websocket

import (
	"net/http"

	"reliefnet/internal/utils"
	"reliefnet/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly in production
	},
}

type Handler struct {
	hub       *Hub
	sink      ChatSink
	jwtSecret string
	logger    *logger.Logger
}

func NewHandler(jwtSecret string, log *logger.Logger) *Handler {
	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// SetChatSink wires the persistence path for socket-originated chat. Called
// once during startup, after the SOS service exists.
func (h *Handler) SetChatSink(sink ChatSink) {
	h.sink = sink
}

// HandleWebSocket upgrades the connection. Volunteers and admins pass their
// bearer token as a query parameter; a session without a token is an
// anonymous requester.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	subjectID := primitive.NewObjectID()
	role := string(utils.RoleRequester)
	name := "Anonymous"

	if token := c.Query("token"); token != "" {
		identity, err := utils.ValidateToken(token, h.jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		subjectID = identity.ID
		role = string(identity.Role)
		name = identity.Name
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := NewClient(h.hub, h.sink, conn, subjectID, role, name)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// GetHub exposes the hub, which implements the service layer's broadcaster.
func (h *Handler) GetHub() *Hub {
	return h.hub
}
