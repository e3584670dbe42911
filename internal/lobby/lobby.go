package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"go.uber.org/zap"
)

type Msg interface{ isLobbyMsg() }

type Action string

const (
	ActDrawNext     Action = "DrawNext"
	ActCompleteDraw Action = "CompleteDraw"
	ActToggleAuto   Action = "ToggleAuto"
	ActRestart      Action = "Restart"
)

type FromClient struct {
	Action Action
	Reply  chan error // optional; buffered, receives exactly one value
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// Load replaces the session with a finished draw from elsewhere. Invalid
// data is rejected and the current session is kept.
type Load struct {
	Groups []engine.Group
	Reply  chan error
}

func (Load) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// revealDue commits the pending placement once the reveal delay is over.
type revealDue struct{ gen int }

func (revealDue) isLobbyMsg() {}

type autoTick struct{ gen int }

func (autoTick) isLobbyMsg() {}

type Snapshot struct {
	Version    int
	State      engine.State
	Auto       bool
	Validation *engine.ValidationResult
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Auto       bool
	Validation *engine.ValidationResult
}

type Options struct {
	RevealDelay  time.Duration
	AutoInterval time.Duration
	// NewSession builds the session used on restart.
	NewSession func() *engine.Session
	Log        *zap.Logger
}

type Lobby struct {
	inbox      chan Msg
	session    *engine.Session
	version    int
	clients    map[string]chan Snapshot
	auto       bool
	gen        int // bumped when the session is replaced
	autoGen    int // bumped whenever an auto tick is armed or auto stops
	validation *engine.ValidationResult
	opts       Options
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewLobby(parent context.Context, initial *engine.Session, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if opts.NewSession == nil {
		opts.NewSession = func() *engine.Session { return engine.StartDraw() }
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		session: initial,
		clients: make(map[string]chan Snapshot),
		opts:    opts,
		log:     opts.Log,
		ctx:     ctx,
		cancel:  cancel,
	}
	l.validateIfFinished()

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.snapshot()

			case Leave:
				// Closing the outbox ends the client's writer.
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case FromClient:
				err := l.handle(msg.Action)
				if err != nil {
					l.log.Info("lobby: action rejected", zap.String("action", string(msg.Action)), zap.Error(err))
				}
				reply(msg.Reply, err)

			case Load:
				s, err := engine.LoadExternalDraw(msg.Groups, engine.WithRules(l.session.Rules))
				if err != nil {
					l.log.Warn("lobby: external draw rejected", zap.Error(err))
					reply(msg.Reply, err)
					break
				}
				l.replace(s)
				reply(msg.Reply, nil)

			case revealDue:
				if msg.gen != l.gen || l.session.Pending == nil {
					break // stale timer
				}
				l.commitPending()

			case autoTick:
				if msg.gen != l.autoGen || !l.auto || l.session.Pending != nil {
					break // the pending commit re-arms auto
				}
				if err := l.drawNext(); err != nil {
					l.log.Warn("lobby: auto draw stopped", zap.Error(err))
					l.auto = false
					l.changed()
				}

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.session.State(),
					Auto:       l.auto,
					Validation: l.validation,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handle(a Action) error {
	switch a {
	case ActDrawNext:
		return l.drawNext()

	case ActCompleteDraw:
		events, err := engine.Apply(l.session, engine.Command{Type: engine.CmdCompleteDraw})
		if err != nil {
			return err
		}
		for _, e := range events {
			if e.Type == engine.EvtTeamUnplaced {
				l.log.Error("lobby: team could not be placed", zap.String("team", e.Team.Name), zap.Int("pot", e.Pot))
			}
		}
		l.stopAuto()
		l.changed()
		return nil

	case ActToggleAuto:
		if l.session.Finished() {
			return engine.ErrDrawFinished
		}
		if l.auto {
			l.stopAuto()
		} else {
			l.auto = true
			if l.session.Pending == nil {
				l.armAuto()
			}
		}
		l.changed()
		return nil

	case ActRestart:
		l.replace(l.opts.NewSession())
		return nil

	default:
		return engine.ErrUnsupportedCommand
	}
}

// drawNext selects a team and arms the reveal timer that commits it.
func (l *Lobby) drawNext() error {
	events, err := engine.Apply(l.session, engine.Command{Type: engine.CmdDrawNext})
	if err != nil {
		if !errors.Is(err, engine.ErrDrawPending) {
			l.log.Error("lobby: draw failed", zap.Error(err))
		}
		return err
	}
	l.logEvents(events)

	if l.session.Pending != nil {
		l.after(l.opts.RevealDelay, revealDue{gen: l.gen})
	} else if l.auto {
		l.armAuto()
	}
	l.changed()
	return nil
}

func (l *Lobby) commitPending() {
	p := *l.session.Pending
	events, err := engine.Apply(l.session, engine.Command{Type: engine.CmdCommit, Placement: p})
	if err != nil {
		// Drawn placements are always legal; drop it rather than seat it anywhere else.
		l.log.Error("lobby: commit failed", zap.String("team", p.Team.Name), zap.Error(err))
		l.session.Discard()
	}
	l.logEvents(events)

	if l.session.Finished() {
		l.stopAuto()
	} else if l.auto {
		l.armAuto()
	}
	l.changed()
}

func (l *Lobby) replace(s *engine.Session) {
	l.gen++
	l.stopAuto()
	l.session = s
	l.validation = nil
	l.validateIfFinished()
	l.changed()
}

func (l *Lobby) armAuto() {
	l.autoGen++
	l.after(l.opts.AutoInterval, autoTick{gen: l.autoGen})
}

func (l *Lobby) stopAuto() {
	l.auto = false
	l.autoGen++
}

func (l *Lobby) after(d time.Duration, m Msg) {
	time.AfterFunc(d, func() {
		select {
		case l.inbox <- m:
		case <-l.ctx.Done():
		}
	})
}

func (l *Lobby) changed() {
	l.validateIfFinished()
	l.version++
	l.broadcast(l.snapshot())
}

// validateIfFinished runs validation once per finished session and logs the outcome.
func (l *Lobby) validateIfFinished() {
	if !l.session.Finished() || l.validation != nil {
		return
	}
	res := engine.Validate(l.session.Groups)
	l.validation = &res
	if !res.Valid {
		l.log.Warn("lobby: draw validation failed", zap.Strings("errors", res.Errors))
		return
	}
	l.log.Info("lobby: draw validation passed")
}

func (l *Lobby) logEvents(events []engine.Event) {
	for _, e := range events {
		l.log.Debug("lobby: draw event",
			zap.String("type", string(e.Type)),
			zap.String("team", e.Team.Name),
			zap.Int("group", e.GroupIndex),
			zap.Int("pot", e.Pot))
	}
}

func (l *Lobby) snapshot() Snapshot {
	return Snapshot{Version: l.version, State: l.session.State(), Auto: l.auto, Validation: l.validation}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby has stopped.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
