package gateway

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/internal/rooms"
)

// maxCodeAttempts bounds retries when a generated code collides with a live room.
const maxCodeAttempts = 10

// Broadcaster fans events out to the connections subscribed to a room code.
// Implementations must not block; they are called with the gateway lock held.
type Broadcaster interface {
	Subscribe(code, connID string)
	Unsubscribe(code, connID string)
	Broadcast(code, event string, payload any)
}

// Config holds the room limits the gateway enforces.
type Config struct {
	MaxParticipants int
	CodeLength      int
	IdleTTL         time.Duration
	SweepInterval   time.Duration
	ChatMaxLength   int
}

// DefaultConfig returns the limits used when a field of Config is zero.
func DefaultConfig() Config {
	return Config{
		MaxParticipants: 20,
		CodeLength:      rooms.DefaultCodeLength,
		IdleTTL:         3 * time.Hour,
		SweepInterval:   time.Minute,
		ChatMaxLength:   200,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxParticipants <= 0 {
		c.MaxParticipants = d.MaxParticipants
	}
	if c.CodeLength <= 0 {
		c.CodeLength = d.CodeLength
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = d.IdleTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	if c.ChatMaxLength <= 0 {
		c.ChatMaxLength = d.ChatMaxLength
	}
	return c
}

// Hooks are notified of engine outcomes worth persisting elsewhere. They run
// with the gateway lock held and must return quickly.
type Hooks struct {
	OnResult     func(ResultRecorded)
	OnRoomClosed func(RoomClosed)
}

// ResultRecorded describes an accepted submission.
type ResultRecorded struct {
	RoomCode   string
	ExamType   string
	TestFormat string
	RoomMode   models.RoomMode
	Result     models.Result
}

// RoomClosed describes a room removed from the registry.
type RoomClosed struct {
	RoomCode   string
	ExamType   string
	TestFormat string
	Reason     string
	ClosedAt   time.Time
	Results    []models.Result
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithRand replaces the randomness used to shuffle questions on start.
func WithRand(rng rooms.Rand) Option {
	return func(g *Gateway) { g.rng = rng }
}

// WithCodeSource replaces the room code generator.
func WithCodeSource(next func() (string, error)) Option {
	return func(g *Gateway) { g.nextCode = next }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithHooks registers outcome hooks.
func WithHooks(h Hooks) Option {
	return func(g *Gateway) { g.hooks = h }
}

// Gateway is the single entry point for every room operation. One mutex
// serializes all of them, so each operation and its broadcasts complete before
// the next one starts, whichever room it targets.
type Gateway struct {
	mu       sync.Mutex
	registry *rooms.Registry
	members  map[string]string // connection id -> room code

	cfg      Config
	out      Broadcaster
	nextCode func() (string, error)
	now      func() time.Time
	rng      rooms.Rand
	hooks    Hooks
	logger   *zap.Logger
}

// New creates a Gateway broadcasting through out.
func New(cfg Config, out Broadcaster, opts ...Option) *Gateway {
	cfg = cfg.withDefaults()
	g := &Gateway{
		registry: rooms.NewRegistry(),
		members:  make(map[string]string),
		cfg:      cfg,
		out:      out,
		nextCode: rooms.NewCodeGenerator(cfg.CodeLength).Next,
		now:      time.Now,
		rng:      rooms.DefaultRand,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective limits.
func (g *Gateway) Config() Config { return g.cfg }

// RoomCount returns the number of live rooms.
func (g *Gateway) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.registry.Len()
}

// RoomOf returns the code of the room connID is bound to.
func (g *Gateway) RoomOf(connID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code, ok := g.members[connID]
	return code, ok
}

// Create builds a room with connID as its sole host.
func (g *Gateway) Create(connID string, req CreateRoomRequest) (CreateRoomReply, error) {
	req.HostName = strings.TrimSpace(req.HostName)
	if err := validateCreate(req); err != nil {
		return CreateRoomReply{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, bound := g.members[connID]; bound {
		return CreateRoomReply{}, rooms.ErrAlreadyInRoom
	}

	now := g.now()
	host := models.Participant{ID: connID, Name: req.HostName, JoinedAt: now}
	settings := rooms.Settings{
		ExamType:   req.ExamType,
		TestFormat: req.TestFormat,
		Mode:       req.RoomMode,
		Questions:  req.Questions,
	}

	var room *rooms.Room
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := g.nextCode()
		if err != nil {
			g.logger.Error("room code generation failed", zap.Error(err))
			return CreateRoomReply{}, rooms.NewError(rooms.KindInternal, "Could not create room. Try again.")
		}
		candidate := rooms.NewRoom(code, host, settings, now)
		if err := g.registry.Create(candidate); err != nil {
			if errors.Is(err, rooms.ErrCodeTaken) {
				continue
			}
			return CreateRoomReply{}, err
		}
		room = candidate
		break
	}
	if room == nil {
		g.logger.Error("room code space exhausted", zap.Int("attempts", maxCodeAttempts))
		return CreateRoomReply{}, rooms.NewError(rooms.KindInternal, "Could not create room. Try again.")
	}

	g.bind(connID, room.Code())
	g.logger.Info("room created",
		zap.String("code", room.Code()),
		zap.String("host", req.HostName),
		zap.String("mode", string(req.RoomMode)),
		zap.Int("questions", len(req.Questions)),
	)
	return CreateRoomReply{Code: room.Code(), Room: room.View()}, nil
}

// Join adds connID to the room named by req.Code and announces it to the room.
func (g *Gateway) Join(connID string, req JoinRoomRequest) (models.RoomView, error) {
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if err := validate(req); err != nil {
		return models.RoomView{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(req.Code)
	if !ok {
		return models.RoomView{}, rooms.ErrRoomNotFound
	}
	if _, bound := g.members[connID]; bound {
		return models.RoomView{}, rooms.ErrAlreadyInRoom
	}
	now := g.now()
	p := models.Participant{ID: connID, Name: req.PlayerName, JoinedAt: now}
	if err := room.AddParticipant(p, g.cfg.MaxParticipants, now); err != nil {
		return models.RoomView{}, err
	}

	g.bind(connID, room.Code())
	g.out.Broadcast(room.Code(), EventParticipantJoined, ParticipantJoined{
		Participant:  p.View(),
		Participants: room.ParticipantViews(),
	})
	g.logger.Info("participant joined",
		zap.String("code", room.Code()),
		zap.String("player", req.PlayerName),
		zap.Int("participants", room.ParticipantCount()),
	)
	return room.View(), nil
}

// Leave removes connID from its room, keeping the connection open. It is a
// no-op for a connection that is not in a room.
func (g *Gateway) Leave(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.depart(connID)
}

// Disconnect reconciles a closed connection.
func (g *Gateway) Disconnect(connID string) {
	g.Leave(connID)
}

// depart runs the departure reconciliation. Caller holds g.mu.
func (g *Gateway) depart(connID string) {
	code, ok := g.members[connID]
	if !ok {
		return
	}
	g.unbind(connID, code)

	room, ok := g.registry.Get(code)
	if !ok {
		return
	}
	d, ok := room.RemoveParticipant(connID, g.now())
	if !ok {
		return
	}

	participants := room.ParticipantViews()
	g.out.Broadcast(code, EventParticipantLeft, ParticipantLeft{Participants: participants})
	g.logger.Info("participant left",
		zap.String("code", code),
		zap.String("player", d.Participant.Name),
		zap.Int("participants", len(participants)),
	)

	if reveal := room.CheckReveal(); reveal != nil {
		g.out.Broadcast(code, EventFriendlyReveal, reveal)
	}

	switch {
	case d.NewHost != nil:
		g.out.Broadcast(code, EventHostChanged, HostChanged{
			HostName:     d.NewHost.Name,
			Participants: participants,
		})
		g.logger.Info("host migrated", zap.String("code", code), zap.String("host", d.NewHost.Name))
	case d.WasHost && !room.Started():
		g.closeRoom(room, ReasonHostLeft, "Host left the room.")
	}
}

// closeRoom announces the closure, unbinds every member and deletes the room.
// Caller holds g.mu.
func (g *Gateway) closeRoom(room *rooms.Room, reason, message string) {
	code := room.Code()
	g.out.Broadcast(code, EventRoomClosed, RoomClosedEvent{Reason: reason, Message: message})
	for connID, bound := range g.members {
		if bound == code {
			g.unbind(connID, code)
		}
	}
	g.registry.Delete(code)
	g.logger.Info("room closed", zap.String("code", code), zap.String("reason", reason))

	board := room.Leaderboard()
	if g.hooks.OnRoomClosed != nil && len(board.Results) > 0 {
		g.hooks.OnRoomClosed(RoomClosed{
			RoomCode:   code,
			ExamType:   room.ExamType(),
			TestFormat: room.TestFormat(),
			Reason:     reason,
			ClosedAt:   g.now(),
			Results:    board.Results,
		})
	}
}

func (g *Gateway) bind(connID, code string) {
	g.members[connID] = code
	g.out.Subscribe(code, connID)
}

func (g *Gateway) unbind(connID, code string) {
	delete(g.members, connID)
	g.out.Unsubscribe(code, connID)
}

// memberRoom resolves the room connID is bound to, if it is the room named by code.
// Caller holds g.mu.
func (g *Gateway) memberRoom(connID, code string) (*rooms.Room, bool) {
	bound, ok := g.members[connID]
	if !ok || bound != rooms.NormalizeCode(code) {
		return nil, false
	}
	return g.registry.Get(bound)
}
