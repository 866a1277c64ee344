package app

import "log"

// Presenter mediates between a model and a view for one page.
type Presenter interface {
	// Route is the fragment key this presenter answers to.
	Route() string
	// Show activates the presenter. params are the fragment's query
	// parameters. Presenters are shown and hidden repeatedly over the
	// session; they are never torn down.
	Show(params map[string]string)
	// Hide deactivates the presenter. It must leave the presenter safe to
	// Show again later.
	Hide()
	// HandleAction dispatches one user action.
	HandleAction(a Action)
	// Active reports whether the presenter is currently shown.
	Active() bool
}

// Lifecycle hooks a concrete presenter binds into its Base. OnShow runs
// feature-specific load logic after the view is shown; OnHide runs cleanup
// after it is hidden.
type Lifecycle interface {
	OnShow(params map[string]string)
	OnHide()
}

// Base implements the shared presenter lifecycle. Concrete presenters embed
// it and bind themselves for the OnShow/OnHide hooks.
type Base struct {
	route  string
	view   View
	hooks  Lifecycle
	active bool
}

// NewBase creates the shared lifecycle state for a presenter on the given
// route and view.
func NewBase(route string, view View) Base {
	return Base{route: route, view: view}
}

// Bind attaches the concrete presenter's lifecycle hooks.
func (b *Base) Bind(hooks Lifecycle) {
	b.hooks = hooks
}

func (b *Base) Route() string { return b.route }

func (b *Base) Active() bool { return b.active }

func (b *Base) Show(params map[string]string) {
	b.active = true
	b.view.Show()
	if b.hooks != nil {
		b.hooks.OnShow(params)
	}
}

func (b *Base) Hide() {
	if !b.active {
		return
	}
	b.active = false
	b.view.Hide()
	if b.hooks != nil {
		b.hooks.OnHide()
	}
}

// HandleAction is the fall-through for action kinds a presenter does not
// recognize.
func (b *Base) HandleAction(a Action) {
	log.Printf("%s: unhandled action %s", b.route, a.Kind)
}

// View returns the bound view, for presenters that surface errors directly.
func (b *Base) View() View { return b.view }
