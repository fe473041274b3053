// Package session owns the client side of a Stop game: the mirrored room
// state, the hub connection lifecycle with reconnect backoff, and recovery of
// an in-progress room after a dropped connection. The presentation layer only
// reads snapshots and calls the command methods; it never mutates state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

var (
	ErrNoRoom          = errors.New("not in a room")
	ErrChatRateLimited = errors.New("sending chat messages too quickly")
)

const (
	maxReconnectAttempts    = 5
	defaultBackoffStep      = 2 * time.Second
	defaultSettingsDebounce = 500 * time.Millisecond
)

// Transport is the bidirectional hub connection the session drives. The
// production implementation is signalr.Client; tests swap in a fake.
type Transport interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, target string, args ...any) error
	Subscribe(onInvoke func(target string, args []json.RawMessage), onClosed func(err error))
}

// Cache persists the minimum needed to re-attach to a room after a process
// restart. All methods are best-effort from the session's point of view.
type Cache interface {
	Save(entry CacheEntry) error
	Load() (*CacheEntry, error)
	Drop() error
}

// CacheEntry is the recovery seed: which room we were in and who we were.
type CacheEntry struct {
	RoomCode  string
	PlayerID  string
	RoomState int
}

// Options configures a Session. Zero values get sensible defaults; the timing
// knobs exist so tests can run the backoff loop without real waiting.
type Options struct {
	Logger *zap.Logger
	Cache  Cache

	// BackoffStep is the base reconnect delay; attempt n waits n*BackoffStep.
	BackoffStep time.Duration
	// SettingsDebounce delays clearing the settings-update flag after a room
	// update, so a fast round-trip doesn't flicker the UI.
	SettingsDebounce time.Duration
	// Sleep waits for d or until ctx is done, returning false when cancelled.
	Sleep func(ctx context.Context, d time.Duration) bool
}

// Session is the real-time game client. One per process; construct, Connect,
// use, Disconnect.
type Session struct {
	log       *zap.Logger
	transport Transport
	store     *Store
	cache     Cache

	backoffStep      time.Duration
	settingsDebounce time.Duration
	sleep            func(ctx context.Context, d time.Duration) bool

	foreground atomic.Bool

	mu            sync.Mutex
	reconnectGen  int // bumped to cancel a running backoff loop
	settingsTimer *time.Timer
	seed          *CacheEntry // recovery hint loaded from the cache at startup

	chatLimiter *rate.Limiter
}

func New(transport Transport, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BackoffStep <= 0 {
		opts.BackoffStep = defaultBackoffStep
	}
	if opts.SettingsDebounce <= 0 {
		opts.SettingsDebounce = defaultSettingsDebounce
	}
	if opts.Sleep == nil {
		opts.Sleep = func(ctx context.Context, d time.Duration) bool {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return false
			case <-t.C:
				return true
			}
		}
	}

	s := &Session{
		log:              opts.Logger,
		transport:        transport,
		store:            NewStore(),
		cache:            opts.Cache,
		backoffStep:      opts.BackoffStep,
		settingsDebounce: opts.SettingsDebounce,
		sleep:            opts.Sleep,
		chatLimiter:      rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
	}
	s.foreground.Store(true)
	s.store.setOnClear(s.cancelSettingsTimer)

	if s.cache != nil {
		if entry, err := s.cache.Load(); err != nil {
			s.log.Warn("failed to load session cache", zap.Error(err))
		} else if entry != nil {
			s.mu.Lock()
			s.seed = entry
			s.mu.Unlock()
			s.log.Info("loaded cached session",
				zap.String("roomCode", entry.RoomCode),
				zap.String("playerId", entry.PlayerID))
		}
	}

	transport.Subscribe(s.onInvocation, s.onConnectionClosed)
	return s
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Watch streams snapshots to a presentation consumer until cancel is called.
func (s *Session) Watch() (<-chan Snapshot, func()) {
	return s.store.Watch()
}

// onInvocation adapts raw hub invocations into the typed event union and
// hands them to the reconciler.
func (s *Session) onInvocation(target string, args []json.RawMessage) {
	ev, err := protocol.DecodeEvent(target, args)
	if err != nil {
		s.log.Warn("dropping undecodable event", zap.String("target", target), zap.Error(err))
		return
	}
	s.handleEvent(ev)
}

func (s *Session) cancelSettingsTimer() {
	s.mu.Lock()
	if s.settingsTimer != nil {
		s.settingsTimer.Stop()
		s.settingsTimer = nil
	}
	s.mu.Unlock()
}

// clearSession is the teardown used by leave, disconnect and dead-room
// detection. The cache entry goes with the in-memory state.
func (s *Session) clearSession() {
	s.store.Clear()
	s.dropCache()
}

func (s *Session) dropCache() {
	s.mu.Lock()
	s.seed = nil
	s.mu.Unlock()
	if s.cache != nil {
		if err := s.cache.Drop(); err != nil {
			s.log.Warn("failed to drop session cache", zap.Error(err))
		}
	}
}

func (s *Session) saveCache(room protocol.Room, player protocol.Player) {
	s.mu.Lock()
	s.seed = nil
	s.mu.Unlock()
	if s.cache == nil {
		return
	}
	entry := CacheEntry{
		RoomCode:  room.Code,
		PlayerID:  player.ID,
		RoomState: int(room.State),
	}
	if err := s.cache.Save(entry); err != nil {
		s.log.Warn("failed to save session cache", zap.Error(err))
	}
}
