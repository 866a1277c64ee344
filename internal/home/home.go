// Package home holds the static pages: home, about, and faq.
package home

import (
	"fmt"
	"io"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/events"
)

// StaticView renders a fixed block of text when shown.
type StaticView struct {
	out  io.Writer
	text string
}

// NewStaticView creates a view that prints text on every Show.
func NewStaticView(out io.Writer, text string) *StaticView {
	return &StaticView{out: out, text: text}
}

func (v *StaticView) Show() {
	fmt.Fprintln(v.out, v.text)
}

func (v *StaticView) Hide() {}

func (v *StaticView) RenderError(msg string) {
	fmt.Fprintf(v.out, "! %s\n", msg)
}

// Presenter drives one static page. Content pages carry no state; the
// presenter exists so the shell can treat every route uniformly.
type Presenter struct {
	app.Base
	bus *events.Bus
}

// NewPresenter creates a static-page presenter for the route.
func NewPresenter(route string, view *StaticView, bus *events.Bus) *Presenter {
	p := &Presenter{
		Base: app.NewBase(route, view),
		bus:  bus,
	}
	p.Bind(p)
	return p
}

func (p *Presenter) OnShow(params map[string]string) {}

func (p *Presenter) OnHide() {}

func (p *Presenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionSubmitScan, app.ActionStartChat:
		// The call-to-action buttons on the landing page lead to the tools page.
		p.bus.Publish(events.NavigateToTools, events.Payload{})
	default:
		p.Base.HandleAction(a)
	}
}

// Page texts.
const (
	HomeText = `[home] Anevia checks for signs of anemia from a photo of your eye.
Head to the tools page to run a scan, or read more on the about page.`

	AboutText = `[about] Anevia analyzes the conjunctiva of the eye for pallor, an
established clinical indicator of anemia. Results are a screening aid,
not a diagnosis. Always consult a medical professional.`

	FAQText = `[faq]
Q: What image formats are supported?
A: JPEG, PNG, and WebP, up to 10MB.

Q: Do I need an account?
A: Scanning works without one. Sign in to keep history and chat about results.

Q: Does it work offline?
A: Previously loaded results are served from the local cache; new scans are
   queued and sent when the connection returns.`
)
