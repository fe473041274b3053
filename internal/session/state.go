package session

import "github.com/RCorazao/stopgame-client/internal/protocol"

// ConnectionState tracks the single hub connection. Exactly one value at a
// time, written only by the lifecycle code.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
	Failed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Phase is the client-visible screen state, a direct function of the
// server-reported room state. Home is reachable only through Clear.
type Phase string

const (
	PhaseHome     Phase = "home"
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseVoting   Phase = "voting"
	PhaseResults  Phase = "results"
	PhaseFinished Phase = "finished"
)

// PhaseForRoomState is total: any code the mapping doesn't know lands in the
// lobby rather than failing.
func PhaseForRoomState(state protocol.RoomState) Phase {
	switch state {
	case protocol.RoomPlaying:
		return PhasePlaying
	case protocol.RoomVoting:
		return PhaseVoting
	case protocol.RoomResults:
		return PhaseResults
	case protocol.RoomFinished:
		return PhaseFinished
	default:
		return PhaseLobby
	}
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	ConnectionState     ConnectionState        `json:"connectionState"`
	Room                *protocol.Room         `json:"room"`
	Player              *protocol.Player       `json:"player"`
	Phase               Phase                  `json:"phase"`
	LastError           string                 `json:"lastError"`
	UpdatingSettings    bool                   `json:"updatingSettings"`
	ShouldSubmitAnswers bool                   `json:"shouldSubmitAnswers"`
	VoteAnswers         []protocol.VoteAnswer  `json:"voteAnswers"`
	ChatMessages        []protocol.ChatMessage `json:"chatMessages"`
	UnreadMessages      int                    `json:"unreadMessages"`
}
