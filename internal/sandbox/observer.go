package sandbox

import "go.uber.org/zap"

// Observer receives slot lifecycle events. Methods are called with the
// slot's lock held and must not call back into the slot.
type Observer interface {
	Presented(slot string)
	Discarded(slot string)
	Released(slot string)
	Unavailable(slot string, err error)
}

type nopObserver struct{}

func (nopObserver) Presented(string)          {}
func (nopObserver) Discarded(string)          {}
func (nopObserver) Released(string)           {}
func (nopObserver) Unavailable(string, error) {}

// Observers fans events out to several observers
type Observers []Observer

func (obs Observers) Presented(slot string) {
	for _, o := range obs {
		o.Presented(slot)
	}
}

func (obs Observers) Discarded(slot string) {
	for _, o := range obs {
		o.Discarded(slot)
	}
}

func (obs Observers) Released(slot string) {
	for _, o := range obs {
		o.Released(slot)
	}
}

func (obs Observers) Unavailable(slot string, err error) {
	for _, o := range obs {
		o.Unavailable(slot, err)
	}
}

// LogObserver writes slot events to a zap logger
type LogObserver struct {
	Logger *zap.Logger
}

func (o LogObserver) Presented(slot string) {
	o.Logger.Debug("Document presented", zap.String("slot", slot))
}

func (o LogObserver) Discarded(slot string) {
	o.Logger.Debug("Stale load discarded", zap.String("slot", slot))
}

func (o LogObserver) Released(slot string) {
	o.Logger.Debug("Slot released", zap.String("slot", slot))
}

func (o LogObserver) Unavailable(slot string, err error) {
	o.Logger.Warn("Isolation context unavailable", zap.String("slot", slot), zap.Error(err))
}
