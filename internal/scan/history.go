package scan

import (
	"context"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
)

// HistoryPresenter drives the scan-history page.
type HistoryPresenter struct {
	app.Base
	model  *Model
	view   *HistoryView
	bus    *events.Bus
	bridge *auth.Bridge
}

// NewHistoryPresenter creates the presenter and subscribes it to the model.
func NewHistoryPresenter(model *Model, view *HistoryView, bus *events.Bus, bridge *auth.Bridge) *HistoryPresenter {
	p := &HistoryPresenter{
		Base:   app.NewBase("scan-history", view),
		model:  model,
		view:   view,
		bus:    bus,
		bridge: bridge,
	}
	p.Bind(p)
	model.Subscribe(p.onUpdate)
	return p
}

func (p *HistoryPresenter) OnShow(params map[string]string) {
	p.load()
}

func (p *HistoryPresenter) OnHide() {}

func (p *HistoryPresenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionRefresh:
		p.load()
	case app.ActionOpenScan:
		scan, err := p.model.GetScan(context.Background(), a.ID)
		if err != nil {
			p.view.RenderError(describeError(err))
			return
		}
		p.view.RenderScan(scan)
	case app.ActionStartChat:
		if a.ID == "" {
			p.view.RenderError("which scan? pass a scan id")
			return
		}
		p.bus.Publish(events.NavigateToChat, events.Payload{ScanID: a.ID})
	default:
		p.Base.HandleAction(a)
	}
}

func (p *HistoryPresenter) load() {
	user, err := p.bridge.CurrentUser()
	if err != nil {
		p.view.RenderError("sign in to see your scan history")
		p.bus.Publish(events.ShowLogin, events.Payload{})
		return
	}

	scans, err := p.model.LoadHistory(context.Background(), user.UID)
	if err != nil {
		p.view.RenderError(describeError(err))
		return
	}
	p.view.RenderHistory(scans)
}

func (p *HistoryPresenter) onUpdate(e Event) {
	if !p.Active() {
		return
	}
	p.view.RenderHistory(e.History)
}
