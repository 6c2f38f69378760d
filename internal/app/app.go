package app

import (
	"context"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/warehouse/config"
	"github.com/talkincode/warehouse/internal/auth"
	"github.com/talkincode/warehouse/internal/events"
	"github.com/talkincode/warehouse/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Application struct {
	appConfig *config.AppConfig
	store     store.ProductStore
	tokens    *auth.TokenService
	bus       *events.Bus
	sched     *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ StoreProvider     = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ TokenProvider     = (*Application)(nil)
	_ EventProvider     = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() store.ProductStore {
	return a.store
}

// OverrideStore replaces the application's product store (used in tests).
func (a *Application) OverrideStore(st store.ProductStore) {
	a.store = st
}

func (a *Application) Tokens() *auth.TokenService {
	return a.tokens
}

func (a *Application) Bus() *events.Bus {
	return a.bus
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Init prepares logging, opens the product store, seeds demo data when
// asked to and starts the background jobs.
func (a *Application) Init(ctx context.Context) error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	zlog, err := newLogger(cfg.Logger)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(zlog)

	if strings.TrimSpace(cfg.Web.Secret) == "" {
		return errors.Wrap(auth.ErrNoSecret, "ACCESS_TOKEN_SECRET")
	}
	a.tokens = auth.NewTokenService(cfg.Web.Secret, cfg.Web.TokenTTL)

	a.bus = events.NewBus()
	if err := a.bus.Subscribe(events.AuditLogger); err != nil {
		return errors.Wrap(err, "subscribe audit logger")
	}

	if a.store == nil {
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		a.store = st
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if cfg.Database.Seed {
		if err := a.checkProducts(ctx); err != nil {
			zap.L().Error("seed products failed", zap.String("namespace", "app"), zap.Error(err))
		}
	}

	return a.initJob()
}

// newLogger builds the zap logger; with file output enabled, JSON lines
// go to a rotated file and console output stays on stdout.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable || cfg.Filename == "" {
		return zapConfig.Build(zap.AddCaller())
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// openStore connects the backend named by database.type
func openStore(ctx context.Context, cfg *config.AppConfig) (store.ProductStore, error) {
	switch cfg.Database.Type {
	case "", "mongodb":
		st, err := store.NewMongoProductStore(store.MongoConfig{
			URI:        cfg.MongoURI(),
			Database:   cfg.Database.Name,
			Collection: cfg.Database.Collection,
			Timeout:    cfg.Database.OpTimeout,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case "bolt":
		st, err := store.NewBoltProductStore(cfg.BoltFile())
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		db, err := getDatabase(cfg.Database, cfg.System.Debug)
		if err != nil {
			return nil, err
		}
		st, err := store.NewGormProductStore(db)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
		return st, nil
	case "memory":
		return store.NewMemoryProductStore(), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Database.Type)
	}
}

func getDatabase(cfg config.DBConfig, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	sqlDB.SetMaxOpenConns(32)
	sqlDB.SetMaxIdleConns(8)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Release releases application resources
func (a *Application) Release(ctx context.Context) {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.bus != nil {
		a.bus.Wait()
	}
	if a.store != nil {
		if err := a.store.Close(ctx); err != nil {
			zap.L().Warn("close store", zap.String("namespace", "app"), zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}
