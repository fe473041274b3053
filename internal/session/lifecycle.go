package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Connect establishes the hub connection. Initial connects do not retry; a
// failure lands in Failed and is returned to the caller, who decides whether
// to try again.
func (s *Session) Connect(ctx context.Context) error {
	s.store.SetConnectionState(Connecting)

	if err := s.transport.Start(ctx); err != nil {
		s.store.SetConnectionState(Failed)
		s.log.Error("connect failed", zap.Error(err))
		return err
	}

	s.store.SetConnectionState(Connected)
	s.log.Info("connected")
	s.recoverRoom(ctx)
	return nil
}

// Disconnect is the explicit teardown. The transport stop is best-effort:
// cached state is cleared and the state normalized to Disconnected even when
// the stop itself errors.
func (s *Session) Disconnect(ctx context.Context) error {
	s.cancelReconnect()

	err := s.transport.Stop(ctx)
	if err != nil {
		s.log.Warn("transport stop failed", zap.Error(err))
	}
	s.clearSession()
	s.store.SetConnectionState(Disconnected)
	return err
}

// SetForeground records app visibility. Coming back to the foreground while
// Disconnected triggers a fresh connect; while Failed we wait for an explicit
// user retry. Going to the background never tears anything down directly; the
// backoff loop notices at its next iteration boundary.
func (s *Session) SetForeground(inForeground bool) {
	s.foreground.Store(inForeground)
	if !inForeground {
		return
	}

	switch state := s.store.ConnectionState(); state {
	case Disconnected:
		s.log.Info("foregrounded while disconnected, reconnecting")
		go func() {
			if err := s.Connect(context.Background()); err != nil {
				s.log.Warn("foreground reconnect failed", zap.Error(err))
			}
		}()
	case Failed:
		s.log.Info("foregrounded while failed, awaiting manual retry")
	default:
		s.log.Debug("foregrounded", zap.Stringer("state", state))
	}
}

// onConnectionClosed is the transport's closed callback. Losing an
// established connection in the foreground starts the backoff loop; in the
// background it just parks in Disconnected until the next foreground
// transition. Losing the connection mid-handshake is a failed connect.
func (s *Session) onConnectionClosed(reason error) {
	s.log.Info("connection closed", zap.Error(reason))

	switch s.store.ConnectionState() {
	case Connected:
		if s.foreground.Load() {
			s.store.SetConnectionState(Reconnecting)
			go s.reconnectLoop()
		} else {
			s.log.Info("backgrounded, deferring reconnect")
			s.store.SetConnectionState(Disconnected)
		}
	case Connecting:
		s.store.SetConnectionState(Failed)
	}
}

// reconnectLoop retries up to maxReconnectAttempts times, waiting n*step
// before attempt n. Foreground status is re-checked before and after every
// wait; a background transition aborts the loop into Disconnected rather
// than Failed.
func (s *Session) reconnectLoop() {
	s.mu.Lock()
	s.reconnectGen++
	gen := s.reconnectGen
	s.mu.Unlock()

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if !s.foreground.Load() {
			s.store.SetConnectionState(Disconnected)
			return
		}

		wait := time.Duration(attempt) * s.backoffStep
		s.log.Info("reconnect attempt",
			zap.Int("attempt", attempt),
			zap.Int("max", maxReconnectAttempts),
			zap.Duration("wait", wait))
		if !s.sleep(context.Background(), wait) || s.reconnectCancelled(gen) {
			return
		}

		if !s.foreground.Load() {
			s.log.Info("backgrounded during backoff, stopping reconnect attempts")
			s.store.SetConnectionState(Disconnected)
			return
		}

		if err := s.transport.Start(context.Background()); err != nil {
			s.log.Warn("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		s.store.SetConnectionState(Connected)
		s.log.Info("reconnected", zap.Int("attempt", attempt))
		s.recoverRoom(context.Background())
		return
	}

	s.log.Warn("reconnect attempts exhausted")
	s.store.SetConnectionState(Failed)
}

func (s *Session) reconnectCancelled(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnectGen != gen
}

func (s *Session) cancelReconnect() {
	s.mu.Lock()
	s.reconnectGen++
	s.mu.Unlock()
}
