package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/warehouse/internal/domain"
)

func TestBusDeliversAllTopics(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []string
	require.NoError(t, bus.Subscribe(func(evt domain.ProductEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt.Action+":"+evt.ID)
	}))

	stock := int64(3)
	bus.Publish(domain.ProductEvent{Action: domain.ProductCreated, ID: "a"})
	bus.Publish(domain.ProductEvent{Action: domain.ProductUpdated, ID: "a", Stock: &stock})
	bus.Publish(domain.ProductEvent{Action: domain.ProductDeleted, ID: "a"})
	bus.Wait()

	assert.ElementsMatch(t, []string{
		"product:created:a",
		"product:updated:a",
		"product:deleted:a",
	}, got)
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(domain.ProductEvent{Action: domain.ProductCreated})
	})
}

func TestAuditLogger(t *testing.T) {
	stock := int64(1)
	assert.NotPanics(t, func() {
		AuditLogger(domain.ProductEvent{Action: domain.ProductUpdated, ID: "x", Stock: &stock})
	})
}
