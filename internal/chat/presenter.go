package chat

import (
	"context"
	"errors"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/offline"
)

// Presenter drives the chat page. Route params decide the entry mode:
// "scan" starts a new session from that scan, "session" resumes one, and
// neither shows the session list.
type Presenter struct {
	app.Base
	model  *Model
	view   *View
	bus    *events.Bus
	bridge *auth.Bridge
}

// NewPresenter creates the presenter and subscribes it to the model.
func NewPresenter(model *Model, view *View, bus *events.Bus, bridge *auth.Bridge) *Presenter {
	p := &Presenter{
		Base:   app.NewBase("chat", view),
		model:  model,
		view:   view,
		bus:    bus,
		bridge: bridge,
	}
	p.Bind(p)
	model.Subscribe(p.onUpdate)
	return p
}

func (p *Presenter) OnShow(params map[string]string) {
	user, err := p.bridge.CurrentUser()
	if err != nil {
		p.view.RenderError("sign in to chat about your results")
		p.bus.Publish(events.ShowLogin, events.Payload{})
		return
	}

	switch {
	case params["scan"] != "":
		p.startFromScan(params["scan"], user.UID)
	case params["session"] != "":
		p.openSession(params["session"])
	default:
		p.loadSessions(user.UID)
	}
}

func (p *Presenter) OnHide() {}

func (p *Presenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionSendMessage:
		p.send(a.Text)
	case app.ActionOpenSession:
		p.openSession(a.ID)
	case app.ActionStartChat:
		user, err := p.bridge.CurrentUser()
		if err != nil {
			p.view.RenderError("sign in to chat about your results")
			return
		}
		p.startFromScan(a.ID, user.UID)
	case app.ActionRefresh:
		if user, err := p.bridge.CurrentUser(); err == nil {
			p.loadSessions(user.UID)
		}
	default:
		p.Base.HandleAction(a)
	}
}

func (p *Presenter) startFromScan(scanID, userID string) {
	session, err := p.model.StartChatFromScan(context.Background(), scanID, userID)
	if err != nil {
		p.view.RenderError(describeError(err))
		return
	}
	p.view.RenderMessages(session, p.model.Messages())
}

func (p *Presenter) openSession(sessionID string) {
	if sessionID == "" {
		p.view.RenderError("which conversation? pass a session id")
		return
	}
	messages, err := p.model.OpenSession(context.Background(), sessionID)
	if err != nil {
		p.view.RenderError(describeError(err))
		return
	}
	p.view.RenderMessages(p.model.CurrentSession(), messages)
}

func (p *Presenter) loadSessions(userID string) {
	sessions, err := p.model.LoadSessions(context.Background(), userID)
	if err != nil {
		p.view.RenderError(describeError(err))
		return
	}
	p.view.RenderSessions(sessions)
}

func (p *Presenter) send(text string) {
	if text == "" {
		return
	}
	p.view.RenderTyping()
	if _, err := p.model.SendMessage(context.Background(), text); err != nil {
		p.view.RenderError(describeError(err))
	}
}

// onUpdate re-renders the conversation after every model mutation, including
// the optimistic stage and its confirm or revert.
func (p *Presenter) onUpdate(e Event) {
	if !p.Active() {
		return
	}
	if e.Session != nil {
		p.view.RenderMessages(nil, e.Messages)
	}
}

// describeError maps model errors to the inline banner text.
func describeError(err error) string {
	switch {
	case errors.Is(err, offline.ErrNoConnection):
		return "you're offline, your message will be sent when the connection returns"
	case errors.Is(err, ErrSendInProgress),
		errors.Is(err, ErrStartInProgress),
		errors.Is(err, ErrNoActiveSession):
		return err.Error()
	default:
		return "chat failed: " + err.Error()
	}
}
