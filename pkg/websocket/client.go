package websocket

import (
	"context"
	"encoding/json"
	"time"

	"reliefnet/internal/models"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ChatSink persists a socket-originated chat message before it is fanned
// out. Wired to the SOS service, which also emits the room broadcast.
type ChatSink interface {
	AppendChat(ctx context.Context, id primitive.ObjectID, sender, message string) (*models.ChatMessage, error)
}

// clientMessage is the client→server wire format.
type clientMessage struct {
	Type    string `json:"type"`
	SOSID   string `json:"sos_id"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type Client struct {
	hub  *Hub
	sink ChatSink
	conn *websocket.Conn
	send chan []byte

	// SessionID identifies this connection; SubjectID is the authenticated
	// volunteer/admin id, or a fresh id for anonymous requester sessions.
	SessionID string
	SubjectID primitive.ObjectID
	Role      string
	Name      string

	rooms map[string]bool
}

func NewClient(hub *Hub, sink ChatSink, conn *websocket.Conn, subjectID primitive.ObjectID, role, name string) *Client {
	return &Client{
		hub:       hub,
		sink:      sink,
		conn:      conn,
		send:      make(chan []byte, 256),
		SessionID: primitive.NewObjectID().Hex(),
		SubjectID: subjectID,
		Role:      role,
		Name:      name,
		rooms:     make(map[string]bool),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		c.handleMessage(message)
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "join_sos_chat":
		sosID, err := primitive.ObjectIDFromHex(msg.SOSID)
		if err != nil {
			return
		}
		c.hub.JoinSOSRoom(c, sosID)

	case "leave_room":
		if msg.SOSID == "" {
			return
		}
		sosID, err := primitive.ObjectIDFromHex(msg.SOSID)
		if err != nil {
			return
		}
		c.hub.LeaveRoom(c, sosRoom(sosID))

	case "chat_message":
		c.handleChatMessage(msg)
	}
}

// handleChatMessage persists and fans out a socket-originated chat message,
// equivalent to the HTTP chat append. The sink broadcasts to the room after
// the write commits, so delivery order follows commit order.
func (c *Client) handleChatMessage(msg clientMessage) {
	if c.sink == nil || msg.Message == "" {
		return
	}

	sosID, err := primitive.ObjectIDFromHex(msg.SOSID)
	if err != nil {
		return
	}

	sender := msg.Sender
	if sender == "" {
		sender = c.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Errors are dropped: a bad sos id on a fire-and-forget socket message
	// has no reply channel, matching the HTTP store as source of truth.
	_, _ = c.sink.AppendChat(ctx, sosID, sender, msg.Message)
}
