package account

import (
	"context"
	"errors"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
)

// GoogleTokenFunc obtains a Google OAuth access token, typically by running
// the browser consent flow.
type GoogleTokenFunc func(ctx context.Context) (string, error)

// LoginPresenter drives the login page.
type LoginPresenter struct {
	app.Base
	bridge  *auth.Bridge
	profile *ProfileModel
	view    *LoginView
	bus     *events.Bus
	google  GoogleTokenFunc
}

// NewLoginPresenter creates the presenter. google may be nil, disabling the
// Google sign-in action.
func NewLoginPresenter(bridge *auth.Bridge, profile *ProfileModel, view *LoginView, bus *events.Bus, google GoogleTokenFunc) *LoginPresenter {
	p := &LoginPresenter{
		Base:    app.NewBase("login", view),
		bridge:  bridge,
		profile: profile,
		view:    view,
		bus:     bus,
		google:  google,
	}
	p.Bind(p)
	return p
}

func (p *LoginPresenter) OnShow(params map[string]string) {}

func (p *LoginPresenter) OnHide() {}

func (p *LoginPresenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionSignIn:
		p.signIn(a.Email, a.Secret)
	case app.ActionSignInGoogle:
		p.signInGoogle()
	case app.ActionResetPassword:
		p.resetPassword(a.Email)
	default:
		p.Base.HandleAction(a)
	}
}

func (p *LoginPresenter) signIn(email, password string) {
	if email == "" || password == "" {
		p.view.RenderError("email and password are required")
		return
	}
	state, err := p.bridge.SignIn(context.Background(), email, password)
	if err != nil {
		p.view.RenderError(authErrorText(err))
		return
	}
	p.view.RenderMessage("signed in as " + state.User.Email)
	p.bus.Publish(events.NavigateHome, events.Payload{})
}

func (p *LoginPresenter) signInGoogle() {
	if p.google == nil {
		p.view.RenderError("Google sign-in is not configured")
		return
	}
	token, err := p.google(context.Background())
	if err != nil {
		p.view.RenderError("Google sign-in failed: " + err.Error())
		return
	}
	state, err := p.bridge.SignInWithGoogle(context.Background(), token)
	if err != nil {
		p.view.RenderError(authErrorText(err))
		return
	}
	p.view.RenderMessage("signed in as " + state.User.Email)
	p.bus.Publish(events.NavigateHome, events.Payload{})
}

func (p *LoginPresenter) resetPassword(email string) {
	if email == "" {
		p.view.RenderError("enter your email to reset the password")
		return
	}
	if err := p.profile.ResetPassword(context.Background(), email); err != nil {
		p.view.RenderError("reset failed: " + err.Error())
		return
	}
	p.view.RenderMessage("password reset email sent to " + email)
}

// authErrorText prefers the provider's user-facing message when one exists.
func authErrorText(err error) string {
	var perr *auth.ProviderError
	if errors.As(err, &perr) {
		return perr.UserMessage()
	}
	return err.Error()
}
