package events

import (
	EventBus "github.com/asaskevich/EventBus"
	"github.com/talkincode/warehouse/internal/domain"
	"go.uber.org/zap"
)

// ProductHandler receives product change events
type ProductHandler func(evt domain.ProductEvent)

// Bus fans product change events out to in-process subscribers
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish delivers evt on the topic named by its action
func (b *Bus) Publish(evt domain.ProductEvent) {
	if b == nil {
		return
	}
	b.bus.Publish(evt.Action, evt)
}

// Subscribe registers fn for every product topic. Handlers run
// asynchronously; call Wait to drain them.
func (b *Bus) Subscribe(fn ProductHandler) error {
	for _, topic := range []string{domain.ProductCreated, domain.ProductUpdated, domain.ProductDeleted} {
		if err := b.bus.SubscribeAsync(topic, fn, false); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until queued asynchronous handlers have finished
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// AuditLogger writes every product change to the zap logger
func AuditLogger(evt domain.ProductEvent) {
	fields := []zap.Field{
		zap.String("namespace", "audit"),
		zap.String("action", evt.Action),
		zap.String("id", evt.ID),
	}
	if evt.Stock != nil {
		fields = append(fields, zap.Int64("stock", *evt.Stock))
	}
	zap.L().Info("product changed", fields...)
}
