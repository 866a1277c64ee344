package events

import "testing"

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(NavigateToChat, func(p Payload) { order = append(order, "first") })
	bus.Subscribe(NavigateToChat, func(p Payload) { order = append(order, "second") })

	bus.Publish(NavigateToChat, Payload{SessionID: "s1"})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order: got %v", order)
	}
}

func TestPublishCarriesPayload(t *testing.T) {
	bus := NewBus()

	var got Payload
	bus.Subscribe(NavigateToChat, func(p Payload) { got = p })

	bus.Publish(NavigateToChat, Payload{SessionID: "s1", ScanID: "scan-9"})

	if got.SessionID != "s1" || got.ScanID != "scan-9" {
		t.Errorf("payload: got %+v", got)
	}
}

func TestPublishScopesToTopic(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(ShowLogin, func(p Payload) { calls++ })

	bus.Publish(ShowRegister, Payload{})
	if calls != 0 {
		t.Errorf("ShowRegister must not reach ShowLogin subscribers, got %d calls", calls)
	}

	bus.Publish(ShowLogin, Payload{})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := NewBus()
	bus.Publish(NavigateHome, Payload{})
}
