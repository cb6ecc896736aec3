// Package registry owns the set of actively-coordinated rooms and the
// per-room persistence loops that flush their content to the durable store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/collabkit/roomwatch/internal/collab"
	"github.com/collabkit/roomwatch/internal/config"
	"github.com/collabkit/roomwatch/internal/latency"
	"github.com/collabkit/roomwatch/internal/metrics"
	"github.com/collabkit/roomwatch/internal/store"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

// Status is the outcome of a successful Start.
type Status int

const (
	StatusStarted Status = iota
	StatusAlreadyActive
)

// StartRequest carries the fields of a start call. TrackingID is required
// in production mode; TutorialName is optional label metadata persisted
// with the content.
type StartRequest struct {
	RoomID       string
	AuthToken    string
	TrackingID   string
	TutorialName string
}

// Room is one actively-coordinated editing session. The registry owns the
// entry; the persistence loop only observes the document and provider
// through it.
type Room struct {
	id         string
	doc        collab.Document
	provider   collab.Provider
	label      string
	trackingID string

	mu sync.Mutex

	// True once the first change notification has armed the loop. Enforces
	// exactly one timer per room.
	loopArmed bool

	// Per-room cancellation handle, created when the loop arms. Stop closes
	// this exact channel and nothing else.
	stop chan struct{}

	stopped bool
}

type Options struct {
	APIKey     string
	Mode       config.Mode
	TickPeriod time.Duration
}

// Registry maps room ids to Rooms. The map is mutated only by Start and
// Stop, under the registry lock.
type Registry struct {
	logger   *zap.Logger
	factory  collab.Factory
	store    store.Store
	sink     metrics.Sink
	recorder *latency.Recorder
	errorLog *store.ErrorLog

	apiKey     string
	mode       config.Mode
	tickPeriod time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
	wg    sync.WaitGroup
}

func New(logger *zap.Logger, factory collab.Factory, st store.Store, sink metrics.Sink,
	recorder *latency.Recorder, errorLog *store.ErrorLog, opts Options) *Registry {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = 2 * time.Second
	}
	return &Registry{
		logger:     logger,
		factory:    factory,
		store:      st,
		sink:       sink,
		recorder:   recorder,
		errorLog:   errorLog,
		apiKey:     opts.APIKey,
		mode:       opts.Mode,
		tickPeriod: opts.TickPeriod,
		rooms:      make(map[string]*Room),
	}
}

// Start begins coordinating a room. Idempotent: a second start of an active
// room returns StatusAlreadyActive without side effects.
func (r *Registry) Start(ctx context.Context, req StartRequest) (Status, error) {
	if req.AuthToken != r.apiKey {
		return 0, ErrUnauthorized
	}
	if req.RoomID == "" {
		return 0, fmt.Errorf("%w: room is required", ErrInvalidRequest)
	}
	if r.mode == config.ModeProduction && req.TrackingID == "" {
		return 0, fmt.Errorf("%w: tracking id is required", ErrInvalidRequest)
	}

	// Cheap idempotence check before touching the store
	r.mu.Lock()
	_, active := r.rooms[req.RoomID]
	r.mu.Unlock()
	if active {
		return StatusAlreadyActive, nil
	}

	var seed string
	var seeded bool
	if r.mode == config.ModeProduction {
		exists, err := r.store.GameExists(ctx, req.RoomID)
		if err != nil {
			return 0, fmt.Errorf("existence check: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("%w: game does not exist", ErrNotFound)
		}
		seed, seeded, err = r.store.GetRoomContent(ctx, req.RoomID)
		if err != nil {
			return 0, fmt.Errorf("seed read: %w", err)
		}
	}

	// Check-and-insert is one atomic step: two racing starts for the same
	// id cannot both create a Room.
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[req.RoomID]; ok {
		return StatusAlreadyActive, nil
	}

	doc, provider, err := r.factory.Join(req.RoomID)
	if err != nil {
		return 0, fmt.Errorf("join room: %w", err)
	}

	if seeded && doc.Text() == "" {
		doc.SetText(seed)
	}

	room := &Room{
		id:         req.RoomID,
		doc:        doc,
		provider:   provider,
		label:      req.TutorialName,
		trackingID: req.TrackingID,
	}

	// The listener is registered after seeding so the seed itself does not
	// arm the loop.
	doc.OnUpdate(func() {
		r.onDocUpdate(room)
	})

	r.rooms[req.RoomID] = room

	r.logger.Info("started listening to room",
		zap.String("room", req.RoomID),
		zap.String("tracking_id", req.TrackingID))

	return StatusStarted, nil
}

// Stop cancels the room's persistence loop, tears down its provider and
// document, and removes it from the registry.
func (r *Registry) Stop(ctx context.Context, roomID, authToken string) error {
	if authToken != r.apiKey {
		return ErrUnauthorized
	}
	if roomID == "" {
		return fmt.Errorf("%w: room is required", ErrInvalidRequest)
	}

	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: room not found", ErrNotFound)
	}
	delete(r.rooms, roomID)
	r.mu.Unlock()

	r.teardown(room)

	r.logger.Info("stopped listening to room", zap.String("room", roomID))
	return nil
}

// Count returns the number of active rooms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Drain stops every room and waits for in-flight ticks to finish. Used by
// the benchmark /done endpoint and by shutdown.
func (r *Registry) Drain() {
	r.mu.Lock()
	rooms := make([]*Room, 0, len(r.rooms))
	for id, room := range r.rooms {
		rooms = append(rooms, room)
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	for _, room := range rooms {
		r.teardown(room)
	}
	r.wg.Wait()
}

// Cancels the room's own timer handle (never a global cancel) and destroys
// its collaborator handles. Safe to call with a loop that never armed.
func (r *Registry) teardown(room *Room) {
	room.mu.Lock()
	if !room.stopped {
		room.stopped = true
		if room.loopArmed {
			close(room.stop)
		}
	}
	room.mu.Unlock()

	room.provider.Destroy()
	room.doc.Destroy()
}
