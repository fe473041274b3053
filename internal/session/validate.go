package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RCorazao/stopgame-client/internal/protocol"
)

// Room settings limits. These mirror the server's constraints so obviously
// bad input never leaves the client; the server stays authoritative.
const (
	MinPlayers         = 2
	MaxPlayers         = 10
	MinRounds          = 1
	MaxRounds          = 5
	MinRoundDuration   = 30
	MaxRoundDuration   = 300
	MinVotingDuration  = 15
	MaxVotingDuration  = 120
	MaxTopicNameLength = 40
	MinTopicsRequired  = 1
)

// Settings is the editable room configuration staged locally before an
// UpdateRoomSettings command.
type Settings struct {
	MaxPlayers            int      `json:"maxPlayers"`
	MaxRounds             int      `json:"maxRounds"`
	RoundDurationSeconds  int      `json:"roundDurationSeconds"`
	VotingDurationSeconds int      `json:"votingDurationSeconds"`
	Topics                []string `json:"topics"`
}

// SettingsFromRoom stages the current server values for editing.
func SettingsFromRoom(room protocol.Room) Settings {
	topics := make([]string, 0, len(room.Topics))
	for _, t := range room.Topics {
		topics = append(topics, t.Name)
	}
	return Settings{
		MaxPlayers:            room.MaxPlayers,
		MaxRounds:             room.MaxRounds,
		RoundDurationSeconds:  room.RoundDurationSeconds,
		VotingDurationSeconds: room.VotingDurationSeconds,
		Topics:                topics,
	}
}

// FieldErrors maps a settings field to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "invalid room settings: " + strings.Join(parts, "; ")
}

// Validate checks every field and returns nil when the settings are sendable.
func (s Settings) Validate() FieldErrors {
	errs := FieldErrors{}

	if s.MaxPlayers < MinPlayers {
		errs["maxPlayers"] = fmt.Sprintf("must be at least %d", MinPlayers)
	} else if s.MaxPlayers > MaxPlayers {
		errs["maxPlayers"] = fmt.Sprintf("must be at most %d", MaxPlayers)
	}

	if s.MaxRounds < MinRounds {
		errs["maxRounds"] = fmt.Sprintf("must be at least %d", MinRounds)
	} else if s.MaxRounds > MaxRounds {
		errs["maxRounds"] = fmt.Sprintf("must be at most %d", MaxRounds)
	}

	if s.RoundDurationSeconds < MinRoundDuration {
		errs["roundDuration"] = fmt.Sprintf("must be at least %d seconds", MinRoundDuration)
	} else if s.RoundDurationSeconds > MaxRoundDuration {
		errs["roundDuration"] = fmt.Sprintf("must be at most %d seconds", MaxRoundDuration)
	}

	if s.VotingDurationSeconds < MinVotingDuration {
		errs["votingDuration"] = fmt.Sprintf("must be at least %d seconds", MinVotingDuration)
	} else if s.VotingDurationSeconds > MaxVotingDuration {
		errs["votingDuration"] = fmt.Sprintf("must be at most %d seconds", MaxVotingDuration)
	}

	if len(s.Topics) < MinTopicsRequired {
		errs["topics"] = fmt.Sprintf("at least %d topic required", MinTopicsRequired)
	} else {
		seen := make(map[string]struct{}, len(s.Topics))
		for _, name := range s.Topics {
			if msg := checkTopicName(name, seen); msg != "" {
				errs["topics"] = msg
				break
			}
			seen[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateTopicName vets a new topic against the existing list. Empty result
// means the name is acceptable.
func ValidateTopicName(name string, existing []string) string {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return checkTopicName(name, seen)
}

// ValidateTopicRemoval rejects removing the last topic or a topic that is not
// in the list.
func ValidateTopicRemoval(existing []string, name string) string {
	if len(existing) <= MinTopicsRequired {
		return fmt.Sprintf("a room needs at least %d topic", MinTopicsRequired)
	}
	target := strings.ToLower(strings.TrimSpace(name))
	for _, e := range existing {
		if strings.ToLower(strings.TrimSpace(e)) == target {
			return ""
		}
	}
	return "topic not found"
}

func checkTopicName(name string, seen map[string]struct{}) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return "topic name cannot be empty"
	case len(trimmed) > MaxTopicNameLength:
		return fmt.Sprintf("topic name cannot exceed %d characters", MaxTopicNameLength)
	}
	if _, dup := seen[strings.ToLower(trimmed)]; dup {
		return "topic name already exists"
	}
	return ""
}
