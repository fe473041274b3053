package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

func testRoom(code string, state protocol.RoomState, players ...protocol.Player) protocol.Room {
	return protocol.Room{
		ID:      "room-" + code,
		Code:    code,
		State:   state,
		Players: players,
	}
}

func TestPhaseForRoomStateIsTotal(t *testing.T) {
	cases := []struct {
		name  string
		state protocol.RoomState
		want  Phase
	}{
		{"waiting maps to lobby", protocol.RoomWaiting, PhaseLobby},
		{"playing", protocol.RoomPlaying, PhasePlaying},
		{"voting", protocol.RoomVoting, PhaseVoting},
		{"results", protocol.RoomResults, PhaseResults},
		{"finished", protocol.RoomFinished, PhaseFinished},
		{"unknown code defaults to lobby", protocol.RoomState(42), PhaseLobby},
		{"negative code defaults to lobby", protocol.RoomState(-1), PhaseLobby},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PhaseForRoomState(tc.state))
		})
	}
}

func TestApplyRecomputesPhase(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomPlaying), protocol.Player{ID: "p1"})

	snap := st.Snapshot()
	require.NotNil(t, snap.Room)
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, "p1", snap.Player.ID)
}

func TestApplyRoomRefreshesSelf(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomWaiting), protocol.Player{ID: "p1", Score: 0})

	// Server-side score change for our own record must not leave the cached
	// identity stale.
	updated := testRoom("ABCD", protocol.RoomPlaying,
		protocol.Player{ID: "p2", Score: 3},
		protocol.Player{ID: "p1", Score: 7, IsConnected: true},
	)
	st.ApplyRoom(updated)

	snap := st.Snapshot()
	require.NotNil(t, snap.Player)
	assert.Equal(t, "p1", snap.Player.ID)
	assert.Equal(t, 7, snap.Player.Score)
	assert.True(t, snap.Player.IsConnected)
}

func TestApplyRoomKeepsIdentityWhenAbsent(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomWaiting), protocol.Player{ID: "p1", Score: 5})

	st.ApplyRoom(testRoom("ABCD", protocol.RoomWaiting, protocol.Player{ID: "p2"}))

	snap := st.Snapshot()
	require.NotNil(t, snap.Player)
	assert.Equal(t, "p1", snap.Player.ID)
	assert.Equal(t, 5, snap.Player.Score)
}

func TestClearMatchesFreshStore(t *testing.T) {
	st := NewStore()
	st.SetConnectionState(Connected)
	st.Apply(testRoom("ABCD", protocol.RoomVoting), protocol.Player{ID: "p1"})
	st.SetUpdatingSettings(true)
	st.RaiseSubmitAnswers()
	st.SetVoteAnswers([]protocol.VoteAnswer{{ID: "a1"}})
	st.AppendChat(protocol.ChatMessage{Message: "hi"})
	st.SetError("boom")
	st.SetRecovering(true)

	st.Clear()
	st.Clear() // idempotent

	want := NewStore().Snapshot()
	got := st.Snapshot()
	// Connection state is lifecycle-owned, not part of the teardown.
	want.ConnectionState = Connected
	assert.Equal(t, want, got)
	assert.Equal(t, PhaseHome, got.Phase)
	assert.False(t, st.Recovering())
}

func TestReportErrorDuringRecovery(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomPlaying), protocol.Player{ID: "p1"})
	st.SetRecovering(true)

	swallowed := st.ReportError("Room not found or no longer exists")
	require.True(t, swallowed)

	snap := st.Snapshot()
	assert.Empty(t, snap.LastError)
	assert.Nil(t, snap.Room)
	assert.Equal(t, PhaseHome, snap.Phase)
	assert.False(t, st.Recovering())
}

func TestReportErrorOutsideRecovery(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomPlaying), protocol.Player{ID: "p1"})
	st.SetUpdatingSettings(true)

	swallowed := st.ReportError("Room not found")
	require.False(t, swallowed)

	snap := st.Snapshot()
	assert.Equal(t, "Room not found", snap.LastError)
	assert.NotNil(t, snap.Room)
	assert.False(t, snap.UpdatingSettings)
}

func TestReportErrorUnrelatedDuringRecovery(t *testing.T) {
	st := NewStore()
	st.Apply(testRoom("ABCD", protocol.RoomPlaying), protocol.Player{ID: "p1"})
	st.SetRecovering(true)

	swallowed := st.ReportError("name already taken")
	require.False(t, swallowed)
	assert.Equal(t, "name already taken", st.Snapshot().LastError)
	// Unrelated errors do not resolve an in-flight recovery.
	assert.True(t, st.Recovering())
	assert.NotNil(t, st.Snapshot().Room)
}

func TestChatUnreadCounting(t *testing.T) {
	st := NewStore()

	st.AppendChat(protocol.ChatMessage{Message: "one"})
	st.AppendChat(protocol.ChatMessage{Message: "two"})
	assert.Equal(t, 2, st.Snapshot().UnreadMessages)

	st.SetChatOpen(true)
	assert.Equal(t, 0, st.Snapshot().UnreadMessages)

	st.AppendChat(protocol.ChatMessage{Message: "three"})
	assert.Equal(t, 0, st.Snapshot().UnreadMessages, "open chat reads messages as they arrive")

	st.SetChatOpen(false)
	st.AppendChat(protocol.ChatMessage{Message: "four"})
	assert.Equal(t, 1, st.Snapshot().UnreadMessages)

	st.MarkChatRead()
	assert.Equal(t, 0, st.Snapshot().UnreadMessages)
	assert.Len(t, st.Snapshot().ChatMessages, 4)
}

func TestVoteTallyReplacedWholesale(t *testing.T) {
	st := NewStore()

	st.SetVoteAnswers([]protocol.VoteAnswer{
		{ID: "a1", Votes: []protocol.Vote{{VoterID: "p1", IsValid: true}}},
	})
	// The same voter flips their vote; the next snapshot carries exactly one
	// vote entry and the client must render it, not accumulate.
	st.SetVoteAnswers([]protocol.VoteAnswer{
		{ID: "a1", Votes: []protocol.Vote{{VoterID: "p1", IsValid: false}}},
	})

	snap := st.Snapshot()
	require.Len(t, snap.VoteAnswers, 1)
	require.Len(t, snap.VoteAnswers[0].Votes, 1)
	assert.False(t, snap.VoteAnswers[0].Votes[0].IsValid)
}

func TestWatchDeliversSnapshots(t *testing.T) {
	st := NewStore()
	ch, cancel := st.Watch()
	defer cancel()

	st.SetConnectionState(Connecting)

	snap := <-ch
	assert.Equal(t, Connecting, snap.ConnectionState)
}
