package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RCorazao/stopgame-client/internal/session"
)

// SetupRoutes builds the local gateway router *with* the session injected.
// This is the presentation boundary: thin UIs read /session and drive the
// command endpoints; the session core stays headless.
func SetupRoutes(s *session.Session, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/session", GetSession(s))
	r.Get("/session/events", StreamSession(s, log))
	r.Post("/session/foreground", SetForeground(s))

	r.Post("/rooms", CreateRoom(s))
	r.Post("/rooms/join", JoinRoom(s))
	r.Put("/rooms/settings", UpdateRoomSettings(s))
	r.Post("/rooms/leave", LeaveRoom(s))

	r.Post("/rounds/start", StartRound(s))
	r.Post("/rounds/stop", StopRound(s))
	r.Post("/answers", SubmitAnswers(s))

	r.Post("/votes", Vote(s))
	r.Post("/votes/finish", FinishVotingPhase(s))

	r.Post("/chat", SendChat(s))
	r.Post("/chat/read", MarkChatRead(s))
	r.Post("/chat/open", SetChatOpen(s))

	r.Post("/errors/clear", ClearError(s))
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
