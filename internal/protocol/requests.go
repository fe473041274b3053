package protocol

// Outbound command payloads. Method names on the hub:
//
//	CreateRoom(CreateRoomRequest)
//	JoinRoom(JoinRoomRequest)
//	UpdateRoomSettings(roomCode, UpdateRoomSettingsRequest)
//	StartRound()
//	Stop()
//	SubmitAnswers(SubmitAnswersRequest)
//	LeaveRoom()
//	Vote(VoteRequest)
//	FinishVotingPhase()
//	SendChat(message)
//	ReconnectRoom(ReconnectRoomRequest)

type CreateRoomRequest struct {
	HostName string `json:"hostName"`
}

type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type UpdateRoomSettingsRequest struct {
	MaxPlayers            int      `json:"maxPlayers"`
	MaxRounds             int      `json:"maxRounds"`
	RoundDurationSeconds  int      `json:"roundDurationSeconds"`
	VotingDurationSeconds int      `json:"votingDurationSeconds"`
	Topics                []string `json:"topics"`
}

type SubmitAnswersRequest struct {
	// Answers maps topic id to the player's answer text.
	Answers map[string]string `json:"answers"`
}

type VoteRequest struct {
	AnswerID string `json:"answerId"`
	IsValid  bool   `json:"isValid"`
}

type ReconnectRoomRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}
