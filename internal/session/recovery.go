package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

// recoverRoom re-attaches the client to the room it last belonged to, if any.
// It runs once per successful (re)connection. The outcome arrives on the
// event stream: RoomReconnected on success, or a "room not found" error that
// ReportError swallows into a silent teardown.
func (s *Session) recoverRoom(ctx context.Context) {
	roomCode, playerID, roomState, ok := s.recoveryTarget()
	if !ok {
		s.log.Debug("no room to recover")
		return
	}

	if protocol.RoomStateFromValue(roomState) == protocol.RoomFinished {
		s.log.Info("cached room already finished, skipping recovery")
		s.clearSession()
		return
	}

	s.log.Info("attempting room recovery",
		zap.String("roomCode", roomCode),
		zap.String("playerId", playerID))
	s.store.SetRecovering(true)

	req := protocol.ReconnectRoomRequest{RoomCode: roomCode, PlayerID: playerID}
	if err := s.transport.Send(ctx, "ReconnectRoom", req); err != nil {
		s.log.Error("room recovery send failed", zap.Error(err))
		s.store.SetRecovering(false)
		s.clearSession()
		s.store.SetError("failed to recover room session: " + err.Error())
	}
}

// recoveryTarget prefers the live room snapshot; a cold start falls back to
// the seed loaded from the on-disk cache.
func (s *Session) recoveryTarget() (roomCode, playerID string, roomState int, ok bool) {
	snap := s.store.Snapshot()
	if snap.Room != nil && snap.Player != nil {
		return snap.Room.Code, snap.Player.ID, int(snap.Room.State), true
	}

	s.mu.Lock()
	seed := s.seed
	s.mu.Unlock()
	if seed != nil {
		return seed.RoomCode, seed.PlayerID, seed.RoomState, true
	}
	return "", "", 0, false
}
