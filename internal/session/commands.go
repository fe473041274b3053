package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

// User-facing commands. Each is a single hub send: no queueing while
// disconnected, no automatic retry. Send failures surface both to the caller
// and in the last-error slot.

func (s *Session) CreateRoom(ctx context.Context, hostName string) error {
	return s.send(ctx, "CreateRoom", protocol.CreateRoomRequest{HostName: hostName})
}

func (s *Session) JoinRoom(ctx context.Context, roomCode, playerName string) error {
	return s.send(ctx, "JoinRoom", protocol.JoinRoomRequest{RoomCode: roomCode, PlayerName: playerName})
}

// UpdateRoomSettings validates locally, then marks the update in flight. The
// flag clears on the next RoomUpdated push (debounced) or on a server error.
func (s *Session) UpdateRoomSettings(ctx context.Context, settings Settings) error {
	snap := s.store.Snapshot()
	if snap.Room == nil {
		return ErrNoRoom
	}
	if errs := settings.Validate(); errs != nil {
		return errs
	}

	s.store.SetUpdatingSettings(true)
	s.store.ClearError()

	req := protocol.UpdateRoomSettingsRequest{
		MaxPlayers:            settings.MaxPlayers,
		MaxRounds:             settings.MaxRounds,
		RoundDurationSeconds:  settings.RoundDurationSeconds,
		VotingDurationSeconds: settings.VotingDurationSeconds,
		Topics:                settings.Topics,
	}
	if err := s.transport.Send(ctx, "UpdateRoomSettings", snap.Room.Code, req); err != nil {
		s.log.Error("update room settings failed", zap.Error(err))
		s.store.SetError("failed to update room settings: " + err.Error())
		s.store.SetUpdatingSettings(false)
		return err
	}
	return nil
}

func (s *Session) StartRound(ctx context.Context) error {
	return s.send(ctx, "StartRound")
}

func (s *Session) StopRound(ctx context.Context) error {
	return s.send(ctx, "Stop")
}

// SubmitAnswers consumes the one-shot auto-submit obligation regardless of
// the send outcome; the server judges late or missing submissions.
func (s *Session) SubmitAnswers(ctx context.Context, answers map[string]string) error {
	s.store.ClearSubmitAnswers()
	return s.send(ctx, "SubmitAnswers", protocol.SubmitAnswersRequest{Answers: answers})
}

func (s *Session) Vote(ctx context.Context, answerID string, isValid bool) error {
	return s.send(ctx, "Vote", protocol.VoteRequest{AnswerID: answerID, IsValid: isValid})
}

func (s *Session) FinishVotingPhase(ctx context.Context) error {
	return s.send(ctx, "FinishVotingPhase")
}

// SendChat is rate-limited locally; a rejected message never reaches the
// network and never lands in the error slot.
func (s *Session) SendChat(ctx context.Context, message string) error {
	if !s.chatLimiter.Allow() {
		return ErrChatRateLimited
	}
	return s.send(ctx, "SendChat", message)
}

// LeaveRoom tears the session down even when the send fails; the server will
// drop the disconnected player on its own.
func (s *Session) LeaveRoom(ctx context.Context) error {
	err := s.transport.Send(ctx, "LeaveRoom")
	if err != nil {
		s.log.Warn("leave room send failed", zap.Error(err))
	}
	s.clearSession()
	return err
}

func (s *Session) ClearError() {
	s.store.ClearError()
}

func (s *Session) MarkChatRead() {
	s.store.MarkChatRead()
}

func (s *Session) SetChatOpen(open bool) {
	s.store.SetChatOpen(open)
}

func (s *Session) send(ctx context.Context, target string, args ...any) error {
	if err := s.transport.Send(ctx, target, args...); err != nil {
		s.log.Error("send failed", zap.String("target", target), zap.Error(err))
		s.store.SetError("failed to send " + target + ": " + err.Error())
		return err
	}
	return nil
}
