package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/RCorazao/stopgame-client/internal/session"
	"github.com/RCorazao/stopgame-client/internal/signalr"
)

func GetSession(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

// StreamSession pushes snapshots as server-sent events until the client goes
// away. The first event is the current snapshot so late subscribers don't
// start blank.
func StreamSession(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		snapshots, cancel := s.Watch()
		defer cancel()

		writeEvent := func(snap session.Snapshot) bool {
			payload, err := json.Marshal(snap)
			if err != nil {
				log.Warn("failed to marshal snapshot", zap.Error(err))
				return true
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !writeEvent(s.Snapshot()) {
			return
		}
		for {
			select {
			case <-r.Context().Done():
				return
			case snap := <-snapshots:
				if !writeEvent(snap) {
					return
				}
			}
		}
	}
}

func SetForeground(s *session.Session) http.HandlerFunc {
	type request struct {
		InForeground bool `json:"inForeground"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		s.SetForeground(req.InForeground)
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateRoom(s *session.Session) http.HandlerFunc {
	type request struct {
		HostName string `json:"hostName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		respond(w, s.CreateRoom(r.Context(), req.HostName))
	}
}

func JoinRoom(s *session.Session) http.HandlerFunc {
	type request struct {
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		respond(w, s.JoinRoom(r.Context(), req.RoomCode, req.PlayerName))
	}
}

func UpdateRoomSettings(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings session.Settings
		if !decode(w, r, &settings) {
			return
		}
		respond(w, s.UpdateRoomSettings(r.Context(), settings))
	}
}

func LeaveRoom(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.LeaveRoom(r.Context()))
	}
}

func StartRound(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.StartRound(r.Context()))
	}
}

func StopRound(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.StopRound(r.Context()))
	}
}

func SubmitAnswers(s *session.Session) http.HandlerFunc {
	type request struct {
		Answers map[string]string `json:"answers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		respond(w, s.SubmitAnswers(r.Context(), req.Answers))
	}
}

func Vote(s *session.Session) http.HandlerFunc {
	type request struct {
		AnswerID string `json:"answerId"`
		IsValid  bool   `json:"isValid"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		respond(w, s.Vote(r.Context(), req.AnswerID, req.IsValid))
	}
}

func FinishVotingPhase(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, s.FinishVotingPhase(r.Context()))
	}
}

func SendChat(s *session.Session) http.HandlerFunc {
	type request struct {
		Message string `json:"message"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		respond(w, s.SendChat(r.Context(), req.Message))
	}
}

func MarkChatRead(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.MarkChatRead()
		w.WriteHeader(http.StatusNoContent)
	}
}

func SetChatOpen(s *session.Session) http.HandlerFunc {
	type request struct {
		Open bool `json:"open"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decode(w, r, &req) {
			return
		}
		s.SetChatOpen(req.Open)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearError(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearError()
		w.WriteHeader(http.StatusNoContent)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// respond maps command outcomes onto status codes: validation details get
// 422, local throttling 429, a down connection 409, anything else 502 since
// the gateway itself is fine.
func respond(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	var fieldErrs session.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"fields": fieldErrs})
	case errors.Is(err, session.ErrChatRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, session.ErrNoRoom), errors.Is(err, signalr.ErrNotConnected):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
