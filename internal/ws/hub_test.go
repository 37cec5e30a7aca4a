package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// connected builds a registry with one connection per identity, each joined to rooms.
func connected(t *testing.T, rooms []string, ids ...any) (*Registry, []*fakeConn) {
	t.Helper()
	reg := NewRegistry()
	var conns []*fakeConn
	for i := 0; i+1 < len(ids); i += 2 {
		conn := ids[i].(*fakeConn)
		require.NoError(t, reg.Connect(conn, ids[i+1].(User), ConnInfo{ConnID: conn.id}))
		for _, room := range rooms {
			require.NoError(t, reg.Join(conn, room))
		}
		conns = append(conns, conn)
	}
	return reg, conns
}

func deliverAll(ds []delivery) {
	for _, d := range ds {
		_ = d.to.Send(d.frame)
	}
}

func TestSendMessageReachesPeersButNotSender(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, []string{"r1"}, a, alice, b, bob)

	ds, err := apply(reg, a, SendMessage{RoomID: "r1", Message: json.RawMessage(`{"text":"hi"}`)})
	require.NoError(t, err)
	deliverAll(ds)

	require.Len(t, b.receivedEvent(EventNewMessage), 1)
	assert.Empty(t, a.receivedEvent(EventNewMessage))

	var got NewMessage
	require.NoError(t, json.Unmarshal(b.receivedEvent(EventNewMessage)[0].Data, &got))
	assert.JSONEq(t, `{"text":"hi"}`, string(got.Message))
	assert.Equal(t, alice.ID, got.User.ID)
	assert.Equal(t, "alice", got.User.Username)
}

func TestNewMessageWireShape(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, []string{"r1"}, a, alice, b, bob)

	ds, err := apply(reg, a, SendMessage{RoomID: "r1", Message: json.RawMessage(`{"text":"hi"}`)})
	require.NoError(t, err)
	require.Len(t, ds, 1)

	assert.JSONEq(t, `{"event":"newMessage","data":{"message":{"text":"hi"},"user":{"_id":"user-a","username":"alice"}}}`, string(ds[0].frame))
}

func TestBroadcastReachesEveryOtherMember(t *testing.T) {
	a, b, c := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	reg, _ := connected(t, []string{"r1"}, a, alice, b, bob, c, User{ID: "user-c", Username: "carol"})
	outsider := newFakeConn("d")
	require.NoError(t, reg.Connect(outsider, User{ID: "user-d", Username: "dave"}, ConnInfo{}))

	ds, err := apply(reg, b, SendReaction{RoomID: "r1", Reaction: json.RawMessage(`{"emoji":"🎉"}`)})
	require.NoError(t, err)
	deliverAll(ds)

	assert.Len(t, a.receivedEvent(EventNewReaction), 1)
	assert.Len(t, c.receivedEvent(EventNewReaction), 1)
	assert.Empty(t, b.received())
	assert.Empty(t, outsider.received())
}

func TestBroadcastToEmptyRoomIsSilent(t *testing.T) {
	a := newFakeConn("a")
	reg, _ := connected(t, nil, a, alice)

	ds, err := apply(reg, a, SendMessage{RoomID: "nobody-here", Message: json.RawMessage(`"x"`)})
	require.NoError(t, err)
	assert.Empty(t, ds)
	assert.Equal(t, 1, reg.ChannelCount(), "broadcast must not create channels")
}

func TestMessageReactionToRoomWithoutPeers(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, nil, a, alice, b, bob)
	require.NoError(t, reg.Join(a, "r1"))

	ds, err := apply(reg, a, SendMessageReaction{
		RoomID:    "r1",
		MessageID: json.RawMessage(`"m1"`),
		Reaction:  json.RawMessage(`{"emoji":"👍"}`),
		Removed:   true,
	})
	require.NoError(t, err)
	deliverAll(ds)

	assert.Empty(t, b.received())
	assert.Empty(t, a.received())
}

func TestMessageReactionFlags(t *testing.T) {
	tests := []struct {
		name        string
		reaction    string
		removed     bool
		updated     bool
		wantRemoved bool
		wantUpdated bool
	}{
		{name: "defaults", reaction: `{"emoji":"👍"}`},
		{name: "flags inside reaction", reaction: `{"emoji":"👍","removed":true}`, wantRemoved: true},
		{name: "top level flags", reaction: `{"emoji":"👍"}`, updated: true, wantUpdated: true},
		{name: "non-object reaction", reaction: `"👍"`, removed: true, wantRemoved: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := newFakeConn("a"), newFakeConn("b")
			reg, _ := connected(t, []string{"r1"}, a, alice, b, bob)

			ds, err := apply(reg, a, SendMessageReaction{
				RoomID:    "r1",
				MessageID: json.RawMessage(`"m1"`),
				Reaction:  json.RawMessage(tt.reaction),
				Removed:   tt.removed,
				Updated:   tt.updated,
			})
			require.NoError(t, err)
			deliverAll(ds)

			frames := b.receivedEvent(EventNewMessageReaction)
			require.Len(t, frames, 1)
			var got NewMessageReaction
			require.NoError(t, json.Unmarshal(frames[0].Data, &got))
			assert.JSONEq(t, `"m1"`, string(got.MessageID))
			assert.JSONEq(t, tt.reaction, string(got.Reaction))
			assert.Equal(t, alice, got.User)
			assert.Equal(t, tt.wantRemoved, got.Removed)
			assert.Equal(t, tt.wantUpdated, got.Updated)
		})
	}
}

func TestRepeatedReactionsArePassedThrough(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, []string{"r1"}, a, alice, b, bob)

	for i := 0; i < 3; i++ {
		ds, err := apply(reg, a, SendReaction{RoomID: "r1", Reaction: json.RawMessage(`{"emoji":"🔥"}`)})
		require.NoError(t, err)
		deliverAll(ds)
	}
	assert.Len(t, b.receivedEvent(EventNewReaction), 3)
}

func TestDisconnectedConnectionReceivesNothing(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, []string{"r1", "r2"}, a, alice, b, bob)

	_, err := apply(reg, b, disconnectEvent{reason: "transport close"})
	require.NoError(t, err)

	for _, room := range []string{"r1", "r2", bob.ID} {
		ds, err := apply(reg, a, SendMessage{RoomID: room, Message: json.RawMessage(`"x"`)})
		require.NoError(t, err)
		assert.Empty(t, ds, room)
	}
}

func TestJoinThenLeaveThroughApply(t *testing.T) {
	a := newFakeConn("a")
	reg, _ := connected(t, nil, a, alice)

	_, err := apply(reg, a, JoinRoom{RoomID: "r1"})
	require.NoError(t, err)
	assert.True(t, reg.IsMember(a, "r1"))

	_, err = apply(reg, a, LeaveRoom{RoomID: "r1"})
	require.NoError(t, err)
	assert.False(t, reg.IsMember(a, "r1"))
}

func TestEventsFromUnknownConnectionAreSkipped(t *testing.T) {
	a := newFakeConn("a")
	reg, _ := connected(t, []string{"r1"}, a, alice)
	ghost := newFakeConn("ghost")

	ds, err := apply(reg, ghost, SendMessage{RoomID: "r1", Message: json.RawMessage(`"boo"`)})
	require.ErrorIs(t, err, ErrUnknownConnection)
	assert.Empty(t, ds)

	_, err = apply(reg, ghost, JoinRoom{RoomID: "r1"})
	require.ErrorIs(t, err, ErrUnknownConnection)
	assert.Len(t, reg.Members("r1"), 1)
}

func TestRejectedEventReportsErrorToOrigin(t *testing.T) {
	a, b := newFakeConn("a"), newFakeConn("b")
	reg, _ := connected(t, []string{"r1"}, a, alice, b, bob)

	ds, err := apply(reg, a, rejectedEvent{event: EventSendMessage, err: assert.AnError})
	var relayErr *RelayError
	require.ErrorAs(t, err, &relayErr)
	deliverAll(ds)

	frames := a.receivedEvent(EventError)
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"message":"Failed to send message"}`, string(frames[0].Data))
	assert.Empty(t, b.received())
	assert.True(t, reg.IsMember(a, "r1"), "relay errors keep the connection")
}

func TestRelayErrorMessages(t *testing.T) {
	assert.Equal(t, "Failed to send reaction", (&RelayError{Event: EventSendReaction}).ClientMessage())
	assert.Equal(t, "Failed to send message reaction", (&RelayError{Event: EventSendMessageReaction}).ClientMessage())
	assert.Equal(t, "Failed to process event", (&RelayError{Event: "bogus"}).ClientMessage())
}

func startHub(t *testing.T, inbox int) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(inbox, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubNotifyUserReachesOnlyThatUser(t *testing.T) {
	hub, _ := startHub(t, 16)
	laptop, phone, other := newFakeConn("laptop"), newFakeConn("phone"), newFakeConn("other")
	require.NoError(t, hub.Connect(laptop, alice, ConnInfo{}))
	require.NoError(t, hub.Connect(phone, alice, ConnInfo{}))
	require.NoError(t, hub.Connect(other, bob, ConnInfo{}))

	require.NoError(t, hub.NotifyUser(context.Background(), alice.ID, EventNewNotification, map[string]string{"text": "invited"}))

	require.Eventually(t, func() bool {
		return len(laptop.receivedEvent(EventNewNotification)) == 1 && len(phone.receivedEvent(EventNewNotification)) == 1
	}, time.Second, 5*time.Millisecond)
	stats, err := hub.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Connections)
	assert.Empty(t, other.received())
}

func TestHubPreservesPerConnectionOrder(t *testing.T) {
	hub, _ := startHub(t, 64)
	a, b := newFakeConn("a"), newFakeConn("b")
	require.NoError(t, hub.Connect(a, alice, ConnInfo{}))
	require.NoError(t, hub.Connect(b, bob, ConnInfo{}))
	require.NoError(t, hub.Dispatch(a, JoinRoom{RoomID: "r1"}))
	require.NoError(t, hub.Dispatch(b, JoinRoom{RoomID: "r1"}))

	for i := 0; i < 20; i++ {
		msg, _ := json.Marshal(map[string]int{"seq": i})
		require.NoError(t, hub.Dispatch(a, SendMessage{RoomID: "r1", Message: msg}))
	}

	require.Eventually(t, func() bool {
		return len(b.receivedEvent(EventNewMessage)) == 20
	}, time.Second, 5*time.Millisecond)
	for i, frame := range b.receivedEvent(EventNewMessage) {
		var got struct {
			Message struct {
				Seq int `json:"seq"`
			} `json:"message"`
		}
		require.NoError(t, json.Unmarshal(frame.Data, &got))
		assert.Equal(t, i, got.Message.Seq)
	}
}

func TestHubClosesSlowConsumer(t *testing.T) {
	hub, _ := startHub(t, 16)
	a, slow := newFakeConn("a"), newFakeConn("slow")
	slow.sendErr = ErrSendBufferFull
	require.NoError(t, hub.Connect(a, alice, ConnInfo{}))
	require.NoError(t, hub.Connect(slow, bob, ConnInfo{}))
	require.NoError(t, hub.Dispatch(slow, JoinRoom{RoomID: "r1"}))
	require.NoError(t, hub.Dispatch(a, SendMessage{RoomID: "r1", Message: json.RawMessage(`"x"`)}))

	require.Eventually(t, slow.isClosed, time.Second, 5*time.Millisecond)
	assert.Empty(t, a.received())
}

func TestHubShutdownClosesConnections(t *testing.T) {
	hub, cancel := startHub(t, 16)
	a := newFakeConn("a")
	require.NoError(t, hub.Connect(a, alice, ConnInfo{}))
	_, err := hub.Stats(context.Background())
	require.NoError(t, err)

	cancel()
	<-hub.Done()

	assert.True(t, a.isClosed())
	assert.ErrorIs(t, hub.Dispatch(a, JoinRoom{RoomID: "r1"}), ErrHubStopped)
	assert.ErrorIs(t, hub.NotifyUser(context.Background(), alice.ID, EventNewNotification, nil), ErrHubStopped)
}
