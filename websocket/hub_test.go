package websocket

import (
	"encoding/json"
	"sync"
	"testing"

	"messenger-backend/apperrors"
	"messenger-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uuid.UUID) *Client {
	// No underlying connection: tests read the outbound queue directly
	// instead of running WritePump.
	return NewClient(userID, "tester", nil)
}

func receivedEvent(t *testing.T, c *Client) event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt event
		require.NoError(t, json.Unmarshal(data, &evt))
		return evt
	default:
		t.Fatal("expected a queued event")
		return event{}
	}
}

func requireEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("expected no queued event, got %s", data)
	default:
	}
}

func Test_RoomToken_Is_Canonical(t *testing.T) {
	req := require.New(t)
	alice := uuid.New()
	bob := uuid.New()

	req.Equal(RoomToken(alice, bob), RoomToken(bob, alice))
	req.Equal(RoomToken(alice, alice), alice.String()+"_"+alice.String())
}

func Test_Join_Requires_Participant_Identity(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()
	mallory := uuid.New()

	_, err := hub.Join(newTestClient(mallory), alice, bob)
	req.ErrorIs(err, apperrors.ErrNotParticipant)

	token, err := hub.Join(newTestClient(alice), alice, bob)
	req.NoError(err)
	req.Equal(RoomToken(alice, bob), token)

	token, err = hub.Join(newTestClient(bob), bob, alice)
	req.NoError(err)
	req.Equal(RoomToken(alice, bob), token)
}

func Test_Publish_Reaches_All_Joined_Sessions(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	aliceClient := newTestClient(alice)
	bobClient := newTestClient(bob)
	_, err := hub.Join(aliceClient, alice, bob)
	req.NoError(err)
	_, err = hub.Join(bobClient, bob, alice)
	req.NoError(err)

	message := models.Message{ID: uuid.New(), SenderID: alice, RecipientID: bob, Content: "hi"}
	hub.PublishCreated(message)

	for _, client := range []*Client{aliceClient, bobClient} {
		evt := receivedEvent(t, client)
		req.Equal("new-message", evt.Type)
		payload := evt.Message.(map[string]any)
		req.Equal(message.ID.String(), payload["id"])
		req.Equal("hi", payload["content"])
	}
}

func Test_Publish_To_Empty_Room_Is_A_NoOp(t *testing.T) {
	hub := NewHub()
	hub.PublishCreated(models.Message{ID: uuid.New(), SenderID: uuid.New(), RecipientID: uuid.New(), Content: "hi"})
	hub.PublishDeleted(uuid.New(), uuid.New(), uuid.New())
}

func Test_Session_Not_Joined_Receives_Nothing(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	bobClient := newTestClient(bob)
	_, err := hub.Join(bobClient, alice, bob)
	req.NoError(err)

	carolClient := newTestClient(carol)
	_, err = hub.Join(carolClient, alice, carol)
	req.NoError(err)

	hub.PublishCreated(models.Message{ID: uuid.New(), SenderID: alice, RecipientID: bob, Content: "hi"})

	receivedEvent(t, bobClient)
	requireEmpty(t, carolClient)
}

func Test_Edit_And_Delete_Events(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	bobClient := newTestClient(bob)
	_, err := hub.Join(bobClient, alice, bob)
	req.NoError(err)

	messageID := uuid.New()
	hub.PublishEdited(models.Message{ID: messageID, SenderID: alice, RecipientID: bob, Content: "hello"})
	evt := receivedEvent(t, bobClient)
	req.Equal("edit-message", evt.Type)
	req.Equal("hello", evt.Message.(map[string]any)["content"])

	hub.PublishDeleted(messageID, alice, bob)
	evt = receivedEvent(t, bobClient)
	req.Equal("delete-message", evt.Type)
	req.Equal(messageID.String(), evt.Message.(map[string]any)["id"])
}

func Test_Leave_Garbage_Collects_Empty_Room(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	client := newTestClient(alice)
	token, err := hub.Join(client, alice, bob)
	req.NoError(err)
	req.Equal(1, hub.MemberCount(token))

	hub.Leave(client, token)
	req.Equal(0, hub.MemberCount(token))
	req.Empty(hub.rooms)

	hub.PublishCreated(models.Message{ID: uuid.New(), SenderID: alice, RecipientID: bob, Content: "hi"})
	requireEmpty(t, client)
}

func Test_Disconnect_Leaves_All_Rooms_And_Closes_Queue(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	client := newTestClient(alice)
	tokenAB, err := hub.Join(client, alice, bob)
	req.NoError(err)
	tokenAC, err := hub.Join(client, alice, carol)
	req.NoError(err)

	hub.Disconnect(client)
	req.Equal(0, hub.MemberCount(tokenAB))
	req.Equal(0, hub.MemberCount(tokenAC))
	req.False(client.enqueue([]byte("late")))

	// Safe to call again after the queue is closed.
	hub.Disconnect(client)
}

func Test_Concurrent_Join_Leave_Publish(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := newTestClient(alice)
			token, err := hub.Join(client, alice, bob)
			if err != nil {
				return
			}
			hub.PublishCreated(models.Message{ID: uuid.New(), SenderID: alice, RecipientID: bob, Content: "hi"})
			hub.Leave(client, token)
			hub.Disconnect(client)
		}()
	}
	wg.Wait()

	req.Equal(0, hub.MemberCount(RoomToken(alice, bob)))
}
