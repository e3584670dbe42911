package hub

import (
	"context"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"github.com/DoyleJ11/worldcup-draw-backend/internal/lobby"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby registers a lobby under Code. An existing lobby with the same
// code is returned unchanged.
type CreateLobby struct {
	Code    string
	Session *engine.Session // nil starts a fresh draw
	Reply   chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type CountLobbies struct {
	Reply chan int
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	opts    lobby.Options
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg()  {}
func (GetLobby) isHubMsg()     {}
func (EnsureLobby) isHubMsg()  {}
func (RemoveLobby) isHubMsg()  {}
func (CountLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg()  {}

func NewHub(parent context.Context, opts lobby.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.NewSession == nil {
		opts.NewSession = func() *engine.Session { return engine.StartDraw() }
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		opts:    opts,
		log:     opts.Log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				msg.Reply <- h.ensure(msg.Code, msg.Session)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				msg.Reply <- h.ensure(msg.Code, nil)

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					select {
					case lb.Inbox() <- lobby.Shutdown{}:
					case <-lb.Done():
					}
					delete(h.lobbies, msg.Code)
					h.log.Info("hub: lobby removed", zap.String("code", msg.Code))
				}

			case CountLobbies:
				msg.Reply <- len(h.lobbies)

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string, s *engine.Session) *lobby.Lobby {
	if lb := h.lobbies[code]; lb != nil {
		return lb
	}
	if s == nil {
		s = h.opts.NewSession()
	}
	opts := h.opts
	opts.Log = h.log.With(zap.String("code", code))
	lb := lobby.NewLobby(h.ctx, s, opts)
	h.lobbies[code] = lb
	h.log.Info("hub: lobby created", zap.String("code", code), zap.Bool("finished", s.Finished()))
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		select {
		case lb.Inbox() <- lobby.Shutdown{}:
		case <-lb.Done():
		}
	}
	clear(h.lobbies)
}
