package protocol

// Wire DTOs for the Stop game hub. Field names follow the server's camelCase
// JSON contract; the client never mutates a received Room except for the
// narrow refresh-self merge done by the session store.

type Room struct {
	ID                         string    `json:"id"`
	Code                       string    `json:"code"`
	HostUserID                 string    `json:"hostUserId"`
	Topics                     []Topic   `json:"topics"`
	Players                    []Player  `json:"players"`
	State                      RoomState `json:"state"`
	Rounds                     []Round   `json:"rounds"`
	CreatedAt                  string    `json:"createdAt"`
	ExpiresAt                  *string   `json:"expiresAt"`
	MaxPlayers                 int       `json:"maxPlayers"`
	RoundDurationSeconds       int       `json:"roundDurationSeconds"`
	VotingDurationSeconds      int       `json:"votingDurationSeconds"`
	MaxRounds                  int       `json:"maxRounds"`
	CurrentRound               *Round    `json:"currentRound"`
	HasPlayersSubmittedAnswers bool      `json:"hasPlayersSubmittedAnswers"`
}

// PlayerByID returns the player entry with the given id, or nil.
func (r *Room) PlayerByID(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RoomState is the server-authoritative room lifecycle code. The client only
// mirrors it, it never computes transitions.
type RoomState int

const (
	RoomWaiting RoomState = iota
	RoomPlaying
	RoomVoting
	RoomResults
	RoomFinished
)

// RoomStateFromValue is total: out-of-range codes collapse to RoomWaiting.
func RoomStateFromValue(v int) RoomState {
	if v < int(RoomWaiting) || v > int(RoomFinished) {
		return RoomWaiting
	}
	return RoomState(v)
}

type Player struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	IsConnected  bool   `json:"isConnected"`
	JoinedAt     string `json:"joinedAt"`
	IsHost       bool   `json:"isHost"`
}

type Topic struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IsDefault       bool   `json:"isDefault"`
	CreatedByUserID string `json:"createdByUserId"`
	CreatedAt       string `json:"createdAt"`
}

type Round struct {
	ID                   string   `json:"id"`
	Letter               string   `json:"letter"`
	StartedAt            string   `json:"startedAt"`
	EndedAt              *string  `json:"endedAt"`
	Answers              []Answer `json:"answers"`
	IsActive             bool     `json:"isActive"`
	TimeRemainingSeconds int      `json:"timeRemainingSeconds"`
}

type Answer struct {
	ID         string `json:"id"`
	TopicID    string `json:"topicId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TopicName  string `json:"topicName"`
	Value      string `json:"value"`
	CreatedAt  string `json:"createdAt"`
	Votes      []Vote `json:"votes"`
}

type Vote struct {
	VoterID         string `json:"voterId"`
	VoterName       string `json:"voterName"`
	AnswerOwnerID   string `json:"answerOwnerId"`
	AnswerOwnerName string `json:"answerOwnerName"`
	TopicID         string `json:"topicId"`
	TopicName       string `json:"topicName"`
	IsValid         bool   `json:"isValid"`
	CreatedAt       string `json:"createdAt"`
}

// VoteAnswer is the answer view pushed during the voting phase. The server
// enforces one vote per voter per answer (overwrite, not accumulation); the
// client renders whatever the latest snapshot says.
type VoteAnswer = Answer

type ChatMessage struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	SentAt  string `json:"sentAt"`
}
