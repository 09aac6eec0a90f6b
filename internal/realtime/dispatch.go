package realtime

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mockify/backend/internal/gateway"
	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/internal/rooms"
)

// Server-originated events.
const (
	EventConnected = "connected"
	EventAck       = "ack"
)

const (
	msgUnknownEvent = "Unknown event."
	msgInternal     = "Something went wrong. Try again."
)

// RoomEngine is the set of room operations reachable over a connection.
type RoomEngine interface {
	Create(connID string, req gateway.CreateRoomRequest) (gateway.CreateRoomReply, error)
	Join(connID string, req gateway.JoinRoomRequest) (models.RoomView, error)
	Start(connID string, req gateway.RoomRequest) error
	FriendlyAnswer(connID string, req gateway.AnswerRequest) error
	FriendlyNext(connID string, req gateway.RoomRequest) error
	Chat(connID string, req gateway.ChatRequest)
	Submit(connID string, req gateway.SubmitResultsRequest) (int, error)
	Leaderboard(code string) (models.Leaderboard, error)
	Leave(connID string)
	Disconnect(connID string)
}

// Dispatcher decodes inbound events and routes them to the room engine.
type Dispatcher struct {
	engine RoomEngine
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher for engine.
func NewDispatcher(engine RoomEngine, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{engine: engine, logger: logger}
}

// Disconnect reconciles a closed connection.
func (d *Dispatcher) Disconnect(connID string) {
	d.engine.Disconnect(connID)
}

// Handle runs one inbound event. ok is false for events that never reply.
func (d *Dispatcher) Handle(connID string, msg WSMessage) (reply any, ok bool) {
	switch msg.Event {
	case gateway.EventCreateRoom:
		var req gateway.CreateRoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		res, err := d.engine.Create(connID, req)
		if err != nil {
			return d.failure(msg.Event, err), true
		}
		return gin.H{"success": true, "code": res.Code, "room": res.Room}, true

	case gateway.EventJoinRoom:
		var req gateway.JoinRoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		room, err := d.engine.Join(connID, req)
		if err != nil {
			return d.failure(msg.Event, err), true
		}
		return gin.H{"success": true, "room": room}, true

	case gateway.EventStartRoom, gateway.EventFriendlyNext:
		var req gateway.RoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		op := d.engine.Start
		if msg.Event == gateway.EventFriendlyNext {
			op = d.engine.FriendlyNext
		}
		if err := op(connID, req); err != nil {
			return d.failure(msg.Event, err), true
		}
		return success(), true

	case gateway.EventFriendlyAnswer:
		var req gateway.AnswerRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		if err := d.engine.FriendlyAnswer(connID, req); err != nil {
			return d.failure(msg.Event, err), true
		}
		return success(), true

	case gateway.EventChatSend:
		var req gateway.ChatRequest
		if err := decode(msg.Data, &req); err == nil {
			d.engine.Chat(connID, req)
		}
		return nil, false

	case gateway.EventSubmitResults:
		var req gateway.SubmitResultsRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		rank, err := d.engine.Submit(connID, req)
		if err != nil {
			return d.failure(msg.Event, err), true
		}
		return gin.H{"success": true, "rank": rank}, true

	case gateway.EventGetLeaderboard:
		var req gateway.RoomRequest
		if err := decode(msg.Data, &req); err != nil {
			return d.failure(msg.Event, err), true
		}
		board, err := d.engine.Leaderboard(req.Code)
		if err != nil {
			return d.failure(msg.Event, err), true
		}
		return gin.H{
			"success":           true,
			"results":           board.Results,
			"totalParticipants": board.TotalParticipants,
			"allSubmitted":      board.AllSubmitted,
		}, true

	case gateway.EventLeaveRoom:
		d.engine.Leave(connID)
		return success(), true

	default:
		d.logger.Debug("unknown event", zap.String("client_id", connID), zap.String("event", msg.Event))
		return gin.H{"success": false, "error": msgUnknownEvent}, true
	}
}

func decode(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return rooms.ErrMalformedRequest
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return rooms.ErrMalformedRequest
	}
	return nil
}

func success() gin.H {
	return gin.H{"success": true}
}

// failure renders err for the client. Engine errors carry their own message;
// anything else is logged and hidden.
func (d *Dispatcher) failure(event string, err error) gin.H {
	var re *rooms.Error
	if errors.As(err, &re) && re.Kind != rooms.KindInternal {
		return gin.H{"success": false, "error": re.Message}
	}
	d.logger.Error("event failed", zap.String("event", event), zap.Error(err))
	if re != nil {
		return gin.H{"success": false, "error": re.Message}
	}
	return gin.H{"success": false, "error": msgInternal}
}
