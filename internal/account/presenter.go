package account

import (
	"context"
	"errors"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/offline"
)

// ProfilePresenter drives the profile page.
type ProfilePresenter struct {
	app.Base
	users   *UserModel
	profile *ProfileModel
	bridge  *auth.Bridge
	view    *ProfileView
	bus     *events.Bus
}

// NewProfilePresenter creates the presenter and subscribes it to the profile
// model.
func NewProfilePresenter(users *UserModel, profile *ProfileModel, bridge *auth.Bridge, view *ProfileView, bus *events.Bus) *ProfilePresenter {
	p := &ProfilePresenter{
		Base:    app.NewBase("profile", view),
		users:   users,
		profile: profile,
		bridge:  bridge,
		view:    view,
		bus:     bus,
	}
	p.Bind(p)
	profile.Subscribe(p.onProfile)
	return p
}

func (p *ProfilePresenter) OnShow(params map[string]string) {
	if !p.users.SignedIn() {
		if _, err := p.bridge.CurrentUser(); err != nil {
			p.view.RenderError("sign in to manage your profile")
			p.bus.Publish(events.ShowLogin, events.Payload{})
			return
		}
	}
	p.load()
}

func (p *ProfilePresenter) OnHide() {}

func (p *ProfilePresenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionRefresh:
		p.load()
	case app.ActionUpdateProfile:
		p.update(a.Text, a.Date)
	case app.ActionUploadPhoto:
		p.uploadPhoto(a.Path)
	case app.ActionChangePassword:
		p.changePassword(a.Secret)
	case app.ActionResetPassword:
		p.resetPassword(a.Email)
	case app.ActionLinkPassword:
		p.linkPassword(a.Secret)
	case app.ActionSignOut:
		p.signOut()
	case app.ActionDeleteAccount:
		p.deleteAccount()
	default:
		p.Base.HandleAction(a)
	}
}

func (p *ProfilePresenter) load() {
	profile, err := p.profile.Load(context.Background())
	if err != nil {
		p.view.RenderError(profileErrorText(err))
		return
	}
	p.view.RenderProfile(profile)
}

func (p *ProfilePresenter) update(username, birthdate string) {
	update := api.ProfileUpdate{Username: username, Birthdate: birthdate}
	if _, err := p.profile.Update(context.Background(), update); err != nil {
		p.view.RenderError(profileErrorText(err))
		return
	}
	p.view.RenderMessage("profile saved")
}

func (p *ProfilePresenter) uploadPhoto(path string) {
	if path == "" {
		p.view.RenderError("which photo? pass a file path")
		return
	}
	if _, err := p.profile.UploadImage(context.Background(), path); err != nil {
		p.view.RenderError(profileErrorText(err))
		return
	}
	p.view.RenderMessage("photo updated")
}

func (p *ProfilePresenter) resetPassword(email string) {
	if email == "" {
		if state := p.users.Current(); state.User != nil {
			email = state.User.Email
		}
	}
	if email == "" {
		p.view.RenderError("enter the account email to reset the password")
		return
	}
	if err := p.profile.ResetPassword(context.Background(), email); err != nil {
		p.view.RenderError(profileErrorText(err))
		return
	}
	p.view.RenderMessage("password reset email sent to " + email)
}

func (p *ProfilePresenter) changePassword(newPassword string) {
	if newPassword == "" {
		p.view.RenderError("new password must not be empty")
		return
	}
	if err := p.profile.ChangePassword(context.Background(), newPassword); err != nil {
		p.view.RenderError(authErrorText(err))
		return
	}
	p.view.RenderMessage("password changed")
}

func (p *ProfilePresenter) linkPassword(password string) {
	if password == "" {
		p.view.RenderError("password must not be empty")
		return
	}
	if err := p.profile.LinkPassword(context.Background(), password); err != nil {
		p.view.RenderError(authErrorText(err))
		return
	}
	p.view.RenderMessage("password sign-in enabled")
}

func (p *ProfilePresenter) signOut() {
	if err := p.bridge.SignOut(); err != nil {
		p.view.RenderError("sign out failed: " + err.Error())
		return
	}
	p.bus.Publish(events.NavigateHome, events.Payload{})
}

func (p *ProfilePresenter) deleteAccount() {
	if err := p.profile.Delete(context.Background()); err != nil {
		p.view.RenderError(profileErrorText(err))
		return
	}
	p.view.RenderMessage("account deleted")
	p.bus.Publish(events.NavigateHome, events.Payload{})
}

func (p *ProfilePresenter) onProfile(profile *api.Profile) {
	if !p.Active() {
		return
	}
	p.view.RenderProfile(profile)
}

// profileErrorText maps model errors to the inline banner text.
func profileErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrNotSignedIn):
		return "sign in to manage your profile"
	case errors.Is(err, offline.ErrNoConnection):
		return "you're offline and no cached profile is available"
	case errors.Is(err, ErrProfileBusy),
		errors.Is(err, ErrInvalidBirthdate),
		errors.Is(err, ErrEmptyUsername):
		return err.Error()
	default:
		return "profile operation failed: " + err.Error()
	}
}
