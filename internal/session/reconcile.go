package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

// handleEvent folds one server event into the session state. Handlers never
// call the network; recovery's send happens on the lifecycle path, not here.
func (s *Session) handleEvent(ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.RoomCreated:
		s.log.Info("room created", zap.String("code", ev.Room.Code))
		s.store.Apply(ev.Room, ev.Player)
		s.saveCache(ev.Room, ev.Player)

	case protocol.RoomJoined:
		s.log.Info("room joined", zap.String("code", ev.Room.Code))
		s.store.Apply(ev.Room, ev.Player)
		s.saveCache(ev.Room, ev.Player)

	case protocol.RoomUpdated:
		s.store.ApplyRoom(ev.Room)
		s.scheduleSettingsClear()
		if snap := s.store.Snapshot(); snap.Player != nil {
			s.saveCache(ev.Room, *snap.Player)
		}

	case protocol.RoundStarted:
		s.log.Info("round started", zap.String("code", ev.Room.Code))
		s.store.ApplyRoom(ev.Room)

	case protocol.RoundStopped:
		// The room snapshot arrives separately; here we only oblige the UI
		// to gather and submit its pending answers.
		s.log.Info("round stopped")
		s.store.RaiseSubmitAnswers()

	case protocol.VoteStarted:
		s.log.Info("vote started", zap.Int("answers", len(ev.Answers)))
		s.store.SetVoteAnswers(ev.Answers)

	case protocol.VoteUpdate:
		s.store.SetVoteAnswers(ev.Answers)

	case protocol.ChatNotification:
		s.store.AppendChat(ev.Message)

	case protocol.RoomReconnected:
		s.log.Info("room recovered", zap.String("code", ev.Room.Code))
		s.store.Apply(ev.Room, ev.Player)
		s.store.SetRecovering(false)
		s.saveCache(ev.Room, ev.Player)

	case protocol.ErrorEvent:
		if s.store.ReportError(ev.Message) {
			s.log.Info("room no longer exists, cleared session", zap.String("reason", ev.Message))
			s.dropCache()
		} else {
			s.log.Warn("server error", zap.String("message", ev.Message))
		}
	}
}

// scheduleSettingsClear drops the settings-update flag after a short delay.
// The delay keeps the UI from flickering when the round-trip is fast; the
// timer is cancelled by Clear so a stale clear can't race a later apply.
func (s *Session) scheduleSettingsClear() {
	s.mu.Lock()
	if s.settingsTimer != nil {
		s.settingsTimer.Stop()
	}
	s.settingsTimer = time.AfterFunc(s.settingsDebounce, func() {
		s.store.SetUpdatingSettings(false)
	})
	s.mu.Unlock()
}
