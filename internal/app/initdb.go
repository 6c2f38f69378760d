package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultProducts is the demo catalogue written into an empty store
var defaultProducts = []domain.Product{
	{Name: "Cordless Drill", Price: 89.99, Stock: 24, SupplierName: "Bosch", Image: "https://i.ibb.co/drill.png", Quote: "Torque for every job"},
	{Name: "Claw Hammer", Price: 14.5, Stock: 60, SupplierName: "Stanley", Image: "https://i.ibb.co/hammer.png", Quote: "Balanced and forged"},
	{Name: "Circular Saw", Price: 129, Stock: 8, SupplierName: "Makita", Image: "https://i.ibb.co/saw.png", Quote: "Clean straight cuts"},
	{Name: "Tape Measure", Price: 9.75, Stock: 120, SupplierName: "Stanley", Image: "https://i.ibb.co/tape.png", Quote: "Eight metres, locking"},
	{Name: "Angle Grinder", Price: 74, Stock: 3, SupplierName: "DeWalt", Image: "https://i.ibb.co/grinder.png", Quote: "Cut, grind, polish"},
	{Name: "Socket Set", Price: 49.9, Stock: 15, SupplierName: "Craftsman", Image: "https://i.ibb.co/sockets.png", Quote: "Forty pieces, metric"},
}

// checkProducts seeds the demo catalogue when the store is empty
func (a *Application) checkProducts(ctx context.Context) error {
	count, err := a.store.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count products")
	}
	if count > 0 {
		return nil
	}
	n, err := a.SeedProducts(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("initialized demo products", zap.String("namespace", "app"), zap.Int("count", n))
	return nil
}

// SeedProducts inserts the demo catalogue concurrently and returns the
// number of inserted products.
func (a *Application) SeedProducts(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range defaultProducts {
		p := defaultProducts[i]
		g.Go(func() error {
			id, err := a.store.Insert(gctx, &p)
			if err != nil {
				return errors.Wrapf(err, "seed %s", p.Name)
			}
			a.bus.Publish(domain.ProductEvent{Action: domain.ProductCreated, ID: id.Hex(), Stock: &p.Stock})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(defaultProducts), nil
}
