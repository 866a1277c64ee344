package account

import (
	"context"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
)

// RegisterPresenter drives the registration page.
type RegisterPresenter struct {
	app.Base
	bridge *auth.Bridge
	view   *RegisterView
	bus    *events.Bus
}

// NewRegisterPresenter creates the presenter.
func NewRegisterPresenter(bridge *auth.Bridge, view *RegisterView, bus *events.Bus) *RegisterPresenter {
	p := &RegisterPresenter{
		Base:   app.NewBase("register", view),
		bridge: bridge,
		view:   view,
		bus:    bus,
	}
	p.Bind(p)
	return p
}

func (p *RegisterPresenter) OnShow(params map[string]string) {}

func (p *RegisterPresenter) OnHide() {}

func (p *RegisterPresenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionRegister:
		p.register(a.Email, a.Secret, a.Confirm, a.Text)
	case app.ActionSignIn:
		p.bus.Publish(events.ShowLogin, events.Payload{})
	default:
		p.Base.HandleAction(a)
	}
}

// register validates the form locally before any network call: both password
// fields must match and nothing may be blank.
func (p *RegisterPresenter) register(email, password, confirm, displayName string) {
	if email == "" || password == "" {
		p.view.RenderError("email and password are required")
		return
	}
	if password != confirm {
		p.view.RenderError("passwords do not match")
		return
	}

	state, err := p.bridge.Register(context.Background(), email, password, displayName)
	if err != nil {
		p.view.RenderError(authErrorText(err))
		return
	}
	p.view.RenderMessage("account created for " + state.User.Email)
	p.bus.Publish(events.NavigateHome, events.Payload{})
}
