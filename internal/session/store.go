package session

import (
	"strings"
	"sync"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

// roomGonePhrase is how the server reports a dead room on its generic error
// channel. String matching is the wire contract we have; a structured error
// code would be better if the hub ever grows one.
const roomGonePhrase = "room not found"

// Store is the single serialization point for session state. Transport
// callbacks, the reconnect loop and user commands all race; every mutation
// funnels through the store's mutex and every mutation notifies watchers.
type Store struct {
	mu sync.Mutex

	connState        ConnectionState
	room             *protocol.Room
	player           *protocol.Player
	phase            Phase
	lastError        string
	updatingSettings bool
	shouldSubmit     bool
	voteAnswers      []protocol.VoteAnswer
	chat             []protocol.ChatMessage
	unread           int
	chatOpen         bool
	recovering       bool

	watchers    map[int]chan Snapshot
	nextWatcher int

	// onClear runs after every Clear, outside the lock. The session hooks it
	// to cancel the settings debounce timer so a stale clear can't race a
	// later apply.
	onClear func()
}

func NewStore() *Store {
	return &Store{
		connState: Disconnected,
		phase:     PhaseHome,
		watchers:  make(map[int]chan Snapshot),
	}
}

// Apply replaces room and player wholesale and recomputes the phase.
func (st *Store) Apply(room protocol.Room, player protocol.Player) {
	st.mu.Lock()
	st.room = &room
	st.player = &player
	st.phase = PhaseForRoomState(room.State)
	st.mu.Unlock()
	st.notify()
}

// ApplyRoom replaces the room, recomputes the phase and re-derives the local
// player from the new snapshot. The cached identity must never go stale: if
// our own record changed server-side (score, connection flag) the fresh room
// is the truth.
func (st *Store) ApplyRoom(room protocol.Room) {
	st.mu.Lock()
	st.room = &room
	st.phase = PhaseForRoomState(room.State)
	if st.player != nil {
		if self := room.PlayerByID(st.player.ID); self != nil {
			refreshed := *self
			st.player = &refreshed
		}
	}
	st.mu.Unlock()
	st.notify()
}

// Clear resets everything to the post-construction state and forces the phase
// back to Home. Explicit leave, explicit disconnect and dead-room detection
// all converge here; the reset is idempotent.
func (st *Store) Clear() {
	st.mu.Lock()
	st.room = nil
	st.player = nil
	st.phase = PhaseHome
	st.lastError = ""
	st.updatingSettings = false
	st.shouldSubmit = false
	st.voteAnswers = nil
	st.chat = nil
	st.unread = 0
	st.chatOpen = false
	st.recovering = false
	onClear := st.onClear
	st.mu.Unlock()

	if onClear != nil {
		onClear()
	}
	st.notify()
}

func (st *Store) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshotLocked()
}

func (st *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		ConnectionState:     st.connState,
		Phase:               st.phase,
		LastError:           st.lastError,
		UpdatingSettings:    st.updatingSettings,
		ShouldSubmitAnswers: st.shouldSubmit,
		UnreadMessages:      st.unread,
	}
	if st.room != nil {
		room := *st.room
		snap.Room = &room
	}
	if st.player != nil {
		player := *st.player
		snap.Player = &player
	}
	if len(st.voteAnswers) > 0 {
		snap.VoteAnswers = append([]protocol.VoteAnswer(nil), st.voteAnswers...)
	}
	if len(st.chat) > 0 {
		snap.ChatMessages = append([]protocol.ChatMessage(nil), st.chat...)
	}
	return snap
}

func (st *Store) ConnectionState() ConnectionState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.connState
}

func (st *Store) SetConnectionState(s ConnectionState) {
	st.mu.Lock()
	st.connState = s
	st.mu.Unlock()
	st.notify()
}

func (st *Store) SetUpdatingSettings(v bool) {
	st.mu.Lock()
	st.updatingSettings = v
	st.mu.Unlock()
	st.notify()
}

func (st *Store) RaiseSubmitAnswers() {
	st.mu.Lock()
	st.shouldSubmit = true
	st.mu.Unlock()
	st.notify()
}

func (st *Store) ClearSubmitAnswers() {
	st.mu.Lock()
	st.shouldSubmit = false
	st.mu.Unlock()
	st.notify()
}

func (st *Store) SetVoteAnswers(answers []protocol.VoteAnswer) {
	st.mu.Lock()
	st.voteAnswers = append([]protocol.VoteAnswer(nil), answers...)
	st.mu.Unlock()
	st.notify()
}

// AppendChat adds a message to the transcript. The unread counter only moves
// while the chat panel is closed.
func (st *Store) AppendChat(msg protocol.ChatMessage) {
	st.mu.Lock()
	st.chat = append(st.chat, msg)
	if !st.chatOpen {
		st.unread++
	}
	st.mu.Unlock()
	st.notify()
}

func (st *Store) SetChatOpen(open bool) {
	st.mu.Lock()
	st.chatOpen = open
	if open {
		st.unread = 0
	}
	st.mu.Unlock()
	st.notify()
}

func (st *Store) MarkChatRead() {
	st.mu.Lock()
	st.unread = 0
	st.mu.Unlock()
	st.notify()
}

func (st *Store) SetError(msg string) {
	st.mu.Lock()
	st.lastError = msg
	st.mu.Unlock()
	st.notify()
}

func (st *Store) ClearError() {
	st.SetError("")
}

func (st *Store) SetRecovering(v bool) {
	st.mu.Lock()
	st.recovering = v
	st.mu.Unlock()
}

func (st *Store) Recovering() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.recovering
}

// ReportError folds a server error event into the store. While a recovery is
// in flight, a "room not found" error is the expected answer to our
// ReconnectRoom attempt: the session is torn down silently and the call
// reports swallowed=true. Every other error is user-facing and also drops the
// settings-update flag, since the server rejects at most one command at a
// time.
func (st *Store) ReportError(msg string) (swallowed bool) {
	st.mu.Lock()
	if st.recovering && strings.Contains(strings.ToLower(msg), roomGonePhrase) {
		st.mu.Unlock()
		st.Clear()
		return true
	}
	st.lastError = msg
	st.updatingSettings = false
	st.mu.Unlock()
	st.notify()
	return false
}

// Watch registers a snapshot listener. The returned cancel func must be
// called when the watcher goes away. Notifications are best-effort: when a
// watcher's buffer is full the oldest pending snapshot is dropped, never the
// sender blocked.
func (st *Store) Watch() (<-chan Snapshot, func()) {
	st.mu.Lock()
	id := st.nextWatcher
	st.nextWatcher++
	ch := make(chan Snapshot, 8)
	st.watchers[id] = ch
	st.mu.Unlock()

	return ch, func() {
		st.mu.Lock()
		delete(st.watchers, id)
		st.mu.Unlock()
	}
}

func (st *Store) notify() {
	st.mu.Lock()
	snap := st.snapshotLocked()
	for _, ch := range st.watchers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	st.mu.Unlock()
}

func (st *Store) setOnClear(fn func()) {
	st.mu.Lock()
	st.onClear = fn
	st.mu.Unlock()
}
