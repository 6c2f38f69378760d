package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/talkincode/warehouse/config"
	"github.com/talkincode/warehouse/internal/auth"
	"github.com/talkincode/warehouse/internal/events"
	"github.com/talkincode/warehouse/internal/store"
)

// StoreProvider provides product storage access
type StoreProvider interface {
	Store() store.ProductStore
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// TokenProvider provides the bearer token service
type TokenProvider interface {
	Tokens() *auth.TokenService
}

// EventProvider provides the product event bus
type EventProvider interface {
	Bus() *events.Bus
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	StoreProvider
	ConfigProvider
	TokenProvider
	EventProvider
	SchedulerProvider

	// SeedProducts inserts the demo catalogue regardless of store contents
	SeedProducts(ctx context.Context) (int, error)
	// RunInventoryReport computes and publishes the inventory snapshot now
	RunInventoryReport(ctx context.Context) (*InventoryReport, error)
}
