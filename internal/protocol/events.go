package protocol

import (
	"encoding/json"
	"fmt"
)

// Event is the closed union of server-pushed hub events. Every inbound
// invocation decodes into exactly one of the types below, so the session
// reconciler can dispatch with an exhaustive type switch.
type Event interface{ isEvent() }

type RoomCreated struct {
	Room   Room
	Player Player
}

type RoomJoined struct {
	Room   Room
	Player Player
}

type RoomUpdated struct {
	Room Room
}

type RoundStarted struct {
	Room Room
}

type RoundStopped struct{}

type VoteStarted struct {
	Answers []VoteAnswer
}

type VoteUpdate struct {
	Answers []VoteAnswer
}

type ChatNotification struct {
	Message ChatMessage
}

type RoomReconnected struct {
	Room   Room
	Player Player
}

type ErrorEvent struct {
	Message string
}

func (RoomCreated) isEvent()      {}
func (RoomJoined) isEvent()       {}
func (RoomUpdated) isEvent()      {}
func (RoundStarted) isEvent()     {}
func (RoundStopped) isEvent()     {}
func (VoteStarted) isEvent()      {}
func (VoteUpdate) isEvent()       {}
func (ChatNotification) isEvent() {}
func (RoomReconnected) isEvent()  {}
func (ErrorEvent) isEvent()       {}

// EventTargets lists the hub method names the client subscribes to.
var EventTargets = []string{
	"RoomCreated", "RoomJoined", "RoomUpdated", "RoundStarted", "RoundStopped",
	"VoteStarted", "VoteUpdate", "ChatNotification", "RoomReconnected", "Error",
}

// DecodeEvent turns a hub invocation (target + raw JSON arguments) into an
// Event. Unknown targets and malformed arguments are errors; the transport
// logs and drops those rather than crashing the read loop.
func DecodeEvent(target string, args []json.RawMessage) (Event, error) {
	arg := func(i int, v any) error {
		if i >= len(args) {
			return fmt.Errorf("%s: missing argument %d", target, i)
		}
		return json.Unmarshal(args[i], v)
	}

	switch target {
	case "RoomCreated":
		var ev RoomCreated
		if err := arg(0, &ev.Room); err != nil {
			return nil, err
		}
		if err := arg(1, &ev.Player); err != nil {
			return nil, err
		}
		return ev, nil

	case "RoomJoined":
		var ev RoomJoined
		if err := arg(0, &ev.Room); err != nil {
			return nil, err
		}
		if err := arg(1, &ev.Player); err != nil {
			return nil, err
		}
		return ev, nil

	case "RoomUpdated":
		var ev RoomUpdated
		if err := arg(0, &ev.Room); err != nil {
			return nil, err
		}
		return ev, nil

	case "RoundStarted":
		var ev RoundStarted
		if err := arg(0, &ev.Room); err != nil {
			return nil, err
		}
		return ev, nil

	case "RoundStopped":
		return RoundStopped{}, nil

	case "VoteStarted":
		var ev VoteStarted
		if err := arg(0, &ev.Answers); err != nil {
			return nil, err
		}
		return ev, nil

	case "VoteUpdate":
		var ev VoteUpdate
		if err := arg(0, &ev.Answers); err != nil {
			return nil, err
		}
		return ev, nil

	case "ChatNotification":
		var ev ChatNotification
		if err := arg(0, &ev.Message); err != nil {
			return nil, err
		}
		return ev, nil

	case "RoomReconnected":
		var ev RoomReconnected
		if err := arg(0, &ev.Room); err != nil {
			return nil, err
		}
		if err := arg(1, &ev.Player); err != nil {
			return nil, err
		}
		return ev, nil

	case "Error":
		var ev ErrorEvent
		if err := arg(0, &ev.Message); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("unknown event target %q", target)
	}
}
