package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" env:"WAREHOUSE_SYSTEM_APPID" env-default:"Warehouse"`
	Location string `yaml:"location" env:"WAREHOUSE_SYSTEM_LOCATION" env-default:"Asia/Dhaka"`
	Workdir  string `yaml:"workdir" env:"WAREHOUSE_SYSTEM_WORKER_DIR" env-default:"/var/warehouse"`
	Debug    bool   `yaml:"debug" env:"WAREHOUSE_SYSTEM_DEBUG" env-default:"false"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host            string        `yaml:"host" env:"WAREHOUSE_WEB_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"PORT" env-default:"5000"`
	Secret          string        `yaml:"secret" env:"ACCESS_TOKEN_SECRET"`
	TokenTTL        time.Duration `yaml:"token_ttl" env:"WAREHOUSE_WEB_TOKEN_TTL" env-default:"24h"`
	LegacyMode      bool          `yaml:"legacy_mode" env:"WAREHOUSE_WEB_LEGACY_MODE" env-default:"false"`
	Metrics         bool          `yaml:"metrics" env:"WAREHOUSE_WEB_METRICS" env-default:"false"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"WAREHOUSE_WEB_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DBConfig database configuration
// Type is one of mongodb, bolt, postgres, memory.
type DBConfig struct {
	Type       string        `yaml:"type" env:"WAREHOUSE_DB_TYPE" env-default:"mongodb"`
	URI        string        `yaml:"uri" env:"WAREHOUSE_DB_URI"`
	Host       string        `yaml:"host" env:"WAREHOUSE_DB_HOST" env-default:"cluster0.fw803.mongodb.net"`
	Name       string        `yaml:"name" env:"WAREHOUSE_DB_NAME" env-default:"warehouseManagementDB"`
	Collection string        `yaml:"collection" env:"WAREHOUSE_DB_COLLECTION" env-default:"products"`
	User       string        `yaml:"user" env:"DB_USER"`
	Passwd     string        `yaml:"passwd" env:"DB_PASS"`
	BoltPath   string        `yaml:"bolt_path" env:"WAREHOUSE_DB_BOLT_PATH"`
	DSN        string        `yaml:"dsn" env:"WAREHOUSE_DB_DSN"`
	OpTimeout  time.Duration `yaml:"op_timeout" env:"WAREHOUSE_DB_OP_TIMEOUT" env-default:"10s"`
	Seed       bool          `yaml:"seed" env:"WAREHOUSE_DB_SEED" env-default:"false"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode" env:"WAREHOUSE_LOGGER_MODE" env-default:"development"`
	FileEnable bool   `yaml:"file_enable" env:"WAREHOUSE_LOGGER_FILE_ENABLE" env-default:"false"`
	Filename   string `yaml:"filename" env:"WAREHOUSE_LOGGER_FILENAME"`
}

// JobConfig background job configuration
type JobConfig struct {
	ReportInterval string `yaml:"report_interval" env:"WAREHOUSE_JOBS_REPORT_INTERVAL" env-default:"@every 5m"`
	LowStock       int64  `yaml:"low_stock" env:"WAREHOUSE_JOBS_LOW_STOCK" env-default:"5"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system"`
	Web      WebConfig `yaml:"web"`
	Database DBConfig  `yaml:"database"`
	Logger   LogConfig `yaml:"logger"`
	Jobs     JobConfig `yaml:"jobs"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

// MongoURI returns the configured connection string, or builds the
// SRV address from the credentials and cluster host.
func (c *AppConfig) MongoURI() string {
	if c.Database.URI != "" {
		return c.Database.URI
	}
	if c.Database.User == "" {
		return fmt.Sprintf("mongodb+srv://%s/?retryWrites=true&w=majority", c.Database.Host)
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.Database.User), url.QueryEscape(c.Database.Passwd), c.Database.Host)
}

// BoltFile returns the bolt database file, defaulting into the data dir.
func (c *AppConfig) BoltFile() string {
	if c.Database.BoltPath != "" {
		return c.Database.BoltPath
	}
	return path.Join(c.GetDataDir(), "warehouse.db")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o700)
	_ = os.MkdirAll(c.GetDataDir(), 0o700)
}

// Dump renders the configuration as YAML
func (c *AppConfig) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Warehouse",
		Location: "Asia/Dhaka",
		Workdir:  "/var/warehouse",
		Debug:    false,
	},
	Web: WebConfig{
		Host:            "0.0.0.0",
		Port:            5000,
		TokenTTL:        24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	},
	Database: DBConfig{
		Type:       "mongodb",
		Host:       "cluster0.fw803.mongodb.net",
		Name:       "warehouseManagementDB",
		Collection: "products",
		OpTimeout:  10 * time.Second,
	},
	Logger: LogConfig{
		Mode: "development",
	},
	Jobs: JobConfig{
		ReportInterval: "@every 5m",
		LowStock:       5,
	},
}

// LoadConfig reads cfile when it exists, then applies environment
// overrides. A .env file in the working directory is loaded first.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := new(AppConfig)
	if cfile != "" {
		if _, err := os.Stat(cfile); err != nil {
			return nil, errors.Wrapf(err, "config file %s", cfile)
		}
		if err := cleanenv.ReadConfig(cfile, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read env")
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig that panics on failure and prepares the
// work directories.
func MustLoadConfig(cfile string) *AppConfig {
	cfg, err := LoadConfig(cfile)
	if err != nil {
		panic(err)
	}
	cfg.initDirs()
	return cfg
}
