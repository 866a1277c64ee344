package scan

import (
	"context"
	"errors"

	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/offline"
)

// ToolsPresenter drives the scan-capture page.
type ToolsPresenter struct {
	app.Base
	model *Model
	view  *ToolsView
	bus   *events.Bus
}

// NewToolsPresenter creates the presenter and subscribes it to the model.
func NewToolsPresenter(model *Model, view *ToolsView, bus *events.Bus) *ToolsPresenter {
	p := &ToolsPresenter{
		Base:  app.NewBase("tools", view),
		model: model,
		view:  view,
		bus:   bus,
	}
	p.Bind(p)
	model.Subscribe(p.onUpdate)
	return p
}

func (p *ToolsPresenter) OnShow(params map[string]string) {
	if last := p.model.Latest(); last != nil {
		p.view.RenderScan(last)
	}
}

// OnHide releases capture resources. The terminal client has no camera
// stream to stop, so this only marks the view inactive.
func (p *ToolsPresenter) OnHide() {}

func (p *ToolsPresenter) HandleAction(a app.Action) {
	switch a.Kind {
	case app.ActionSubmitScan:
		p.submit(a.Path)
	case app.ActionStartChat:
		scanID := a.ID
		if scanID == "" {
			if last := p.model.Latest(); last != nil {
				scanID = last.ID
			}
		}
		if scanID == "" {
			p.view.RenderError("no scan to discuss yet")
			return
		}
		p.bus.Publish(events.NavigateToChat, events.Payload{ScanID: scanID})
	default:
		p.Base.HandleAction(a)
	}
}

func (p *ToolsPresenter) submit(path string) {
	p.view.RenderUploading(path)
	scan, err := p.model.ScanImage(context.Background(), path)
	if err != nil {
		p.view.RenderError(describeError(err))
		return
	}
	p.view.RenderScan(scan)
}

func (p *ToolsPresenter) onUpdate(e Event) {
	if !p.Active() {
		return
	}
	p.view.RenderScan(e.Latest)
}

// describeError maps model errors to the inline banner text.
func describeError(err error) string {
	switch {
	case errors.Is(err, offline.ErrNoConnection):
		return "you're offline and no cached result is available"
	case errors.Is(err, ErrScanInProgress),
		errors.Is(err, ErrHistoryInProgress),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrUnsupportedType):
		return err.Error()
	default:
		return "scan failed: " + err.Error()
	}
}
