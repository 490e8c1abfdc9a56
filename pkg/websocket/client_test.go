package websocket

import (
	"context"
	"testing"

	"reliefnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type capturingSink struct {
	sosID   primitive.ObjectID
	sender  string
	message string
	calls   int
}

func (s *capturingSink) AppendChat(ctx context.Context, id primitive.ObjectID, sender, message string) (*models.ChatMessage, error) {
	s.calls++
	s.sosID = id
	s.sender = sender
	s.message = message
	return &models.ChatMessage{Sender: sender, Message: message}, nil
}

func TestHandleMessageJoinSOSChat(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "requester", "Dana")
	hub.registerClient(client)
	receiveEvent(t, client)

	sosID := primitive.NewObjectID()
	client.handleMessage([]byte(`{"type":"join_sos_chat","sos_id":"` + sosID.Hex() + `"}`))

	hub.mutex.RLock()
	joined := hub.rooms[sosRoom(sosID)][client]
	hub.mutex.RUnlock()
	assert.True(t, joined)

	client.handleMessage([]byte(`{"type":"leave_room","sos_id":"` + sosID.Hex() + `"}`))

	hub.mutex.RLock()
	_, roomExists := hub.rooms[sosRoom(sosID)]
	hub.mutex.RUnlock()
	assert.False(t, roomExists)
}

func TestHandleMessageChatGoesThroughSink(t *testing.T) {
	hub := NewHub()
	sink := &capturingSink{}
	client := NewClient(hub, sink, nil, primitive.NewObjectID(), "requester", "Dana")

	sosID := primitive.NewObjectID()
	client.handleMessage([]byte(`{"type":"chat_message","sos_id":"` + sosID.Hex() + `","message":"need water"}`))

	require.Equal(t, 1, sink.calls)
	assert.Equal(t, sosID, sink.sosID)
	assert.Equal(t, "need water", sink.message)
	// Sender falls back to the session's display name.
	assert.Equal(t, "Dana", sink.sender)
}

func TestHandleMessageIgnoresGarbage(t *testing.T) {
	hub := NewHub()
	sink := &capturingSink{}
	client := NewClient(hub, sink, nil, primitive.NewObjectID(), "requester", "Dana")

	client.handleMessage([]byte(`not json`))
	client.handleMessage([]byte(`{"type":"chat_message","sos_id":"not-an-id","message":"hi"}`))
	client.handleMessage([]byte(`{"type":"chat_message","sos_id":"` + primitive.NewObjectID().Hex() + `"}`))
	client.handleMessage([]byte(`{"type":"join_sos_chat","sos_id":"bad"}`))

	assert.Zero(t, sink.calls)
}
