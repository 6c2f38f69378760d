package app

import (
	"context"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/warehouse/internal/domain"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// InventoryReport is a point-in-time summary of the catalogue
type InventoryReport struct {
	Products    int64
	TotalStock  int64
	LowStock    int64
	MeanPrice   float64
	MedianPrice float64
	At          time.Time
}

var (
	inventoryGauges = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "warehouse",
		Name:      "inventory",
		Help:      "Inventory snapshot values from the periodic report.",
	}, []string{"metric"})
	registerGaugesOnce sync.Once
)

func registerGauges() {
	registerGaugesOnce.Do(func() {
		if err := prometheus.Register(inventoryGauges); err != nil {
			zap.L().Warn("register inventory gauges", zap.String("namespace", "jobs"), zap.Error(err))
		}
	})
}

func (a *Application) initJob() error {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))
	registerGauges()

	spec := a.appConfig.Jobs.ReportInterval
	if spec == "" {
		spec = "@every 5m"
	}
	_, err = a.sched.AddFunc(spec, a.SchedInventoryReportTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
		return errors.Wrapf(err, "schedule inventory report %q", spec)
	}

	a.sched.Start()
	return nil
}

// SchedInventoryReportTask inventory report
func (a *Application) SchedInventoryReportTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	timeout := a.appConfig.Database.OpTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := a.RunInventoryReport(ctx); err != nil {
		zap.L().Error("inventory report failed", zap.String("namespace", "jobs"), zap.Error(err))
	}
}

// RunInventoryReport builds the report, logs it and updates the gauges
func (a *Application) RunInventoryReport(ctx context.Context) (*InventoryReport, error) {
	products, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	report := BuildInventoryReport(products, a.appConfig.Jobs.LowStock)

	inventoryGauges.WithLabelValues("products").Set(float64(report.Products))
	inventoryGauges.WithLabelValues("total_stock").Set(float64(report.TotalStock))
	inventoryGauges.WithLabelValues("low_stock").Set(float64(report.LowStock))
	inventoryGauges.WithLabelValues("mean_price").Set(report.MeanPrice)
	inventoryGauges.WithLabelValues("median_price").Set(report.MedianPrice)

	zap.L().Info("inventory report",
		zap.String("namespace", "jobs"),
		zap.Int64("products", report.Products),
		zap.Int64("total_stock", report.TotalStock),
		zap.Int64("low_stock", report.LowStock),
		zap.Float64("mean_price", report.MeanPrice),
		zap.Float64("median_price", report.MedianPrice))
	return report, nil
}

// BuildInventoryReport summarizes products; a product is low on stock
// when its quantity is at or below lowStock.
func BuildInventoryReport(products []domain.Product, lowStock int64) *InventoryReport {
	report := &InventoryReport{Products: int64(len(products)), At: time.Now()}
	prices := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		report.TotalStock += p.Stock
		if p.Stock <= lowStock {
			report.LowStock++
		}
		prices = append(prices, p.Price)
	}
	if len(prices) == 0 {
		return report
	}
	// stats only fails on empty input
	report.MeanPrice, _ = prices.Mean()
	report.MedianPrice, _ = prices.Median()
	return report
}
