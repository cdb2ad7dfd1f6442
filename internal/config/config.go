package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Policy    PolicyConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	AggregateTTLSecs  int
}

// AnalyticsConfig controls the shape of one analysis run.
type AnalyticsConfig struct {
	HistoryDays     int           // lookback window for sales aggregation
	ForecastDays    int           // default forecast horizon
	LeadTimeDays    int           // supplier lead time used by the planner
	WorkerCount     int           // parallelism across product jobs within a step
	BatchDeadline   time.Duration // hard deadline for one run
	HotTopN         int           // hot products kept per store
	TransferCover   int           // days of cover a store transfer should reach
	StockoutHorizon int           // days-ahead window for the stockout forecast report
}

// PolicyConfig exposes the business-policy weights as named, overridable
// configuration instead of embedded literals.
type PolicyConfig struct {
	// Forecast blend weights over {weighted avg, trend-projected avg,
	// 7-day moving avg, simple avg}. Must sum to 1.
	ForecastWeightedAvg   float64
	ForecastTrendAvg      float64
	ForecastMovingAvg7    float64
	ForecastSimpleAvg     float64
	SafetyStockFactor     float64 // multiplier on avg_daily_sales·√lead_time
	OverstockDaysLimit    float64 // turnover_days beyond which overstock risk accrues
	StockoutHorizonDays   float64 // days of cover below which stockout risk accrues
	ListingImageWeight    float64
	ListingStockWeight    float64
	ListingTurnoverWeight float64
	ListingMarginWeight   float64
	ListingRevenueWeight  float64
	ListingTrendWeight    float64
	// Annualized turns-per-year cutoffs for the fast/medium/slow buckets.
	TurnoverFastRate   float64
	TurnoverMediumRate float64
	TurnoverSlowRate   float64
	// Health score weights over {service level, stockout risk, overstock
	// risk}. Must sum to 1.
	HealthServiceWeight   float64
	HealthStockoutWeight  float64
	HealthOverstockWeight float64
	// Transfer urgency cutoffs (days of cover) and the hot-product score
	// bonus.
	TransferCriticalDays float64
	TransferHighDays     float64
	TransferHotBonus     float64
}

type ExportConfig struct {
	OutputDir string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory_intel")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_AGGREGATE_TTL_SECONDS", 300)

		viper.SetDefault("ANALYTICS_HISTORY_DAYS", 90)
		viper.SetDefault("ANALYTICS_FORECAST_DAYS", 30)
		viper.SetDefault("ANALYTICS_LEAD_TIME_DAYS", 14)
		viper.SetDefault("ANALYTICS_WORKER_COUNT", 4)
		viper.SetDefault("ANALYTICS_BATCH_DEADLINE_SECONDS", 600)
		viper.SetDefault("ANALYTICS_HOT_TOP_N", 10)
		viper.SetDefault("ANALYTICS_TRANSFER_COVER_DAYS", 14)
		viper.SetDefault("ANALYTICS_STOCKOUT_HORIZON_DAYS", 14)

		viper.SetDefault("POLICY_FORECAST_WEIGHTED_AVG", 0.4)
		viper.SetDefault("POLICY_FORECAST_TREND_AVG", 0.3)
		viper.SetDefault("POLICY_FORECAST_MOVING_AVG_7", 0.2)
		viper.SetDefault("POLICY_FORECAST_SIMPLE_AVG", 0.1)
		viper.SetDefault("POLICY_SAFETY_STOCK_FACTOR", 1.5)
		viper.SetDefault("POLICY_OVERSTOCK_DAYS_LIMIT", 180.0)
		viper.SetDefault("POLICY_STOCKOUT_HORIZON_DAYS", 14.0)
		viper.SetDefault("POLICY_LISTING_IMAGE_WEIGHT", 0.40)
		viper.SetDefault("POLICY_LISTING_STOCK_WEIGHT", 0.30)
		viper.SetDefault("POLICY_LISTING_TURNOVER_WEIGHT", 0.15)
		viper.SetDefault("POLICY_LISTING_MARGIN_WEIGHT", 0.10)
		viper.SetDefault("POLICY_LISTING_REVENUE_WEIGHT", 0.025)
		viper.SetDefault("POLICY_LISTING_TREND_WEIGHT", 0.025)
		viper.SetDefault("POLICY_TURNOVER_FAST_RATE", 12.0)
		viper.SetDefault("POLICY_TURNOVER_MEDIUM_RATE", 6.0)
		viper.SetDefault("POLICY_TURNOVER_SLOW_RATE", 1.0)
		viper.SetDefault("POLICY_HEALTH_SERVICE_WEIGHT", 0.5)
		viper.SetDefault("POLICY_HEALTH_STOCKOUT_WEIGHT", 0.3)
		viper.SetDefault("POLICY_HEALTH_OVERSTOCK_WEIGHT", 0.2)
		viper.SetDefault("POLICY_TRANSFER_CRITICAL_DAYS", 7.0)
		viper.SetDefault("POLICY_TRANSFER_HIGH_DAYS", 10.0)
		viper.SetDefault("POLICY_TRANSFER_HOT_BONUS", 20.0)

		viper.SetDefault("EXPORT_OUTPUT_DIR", "./data/exports")
		viper.SetDefault("EXPORT_BUCKET", "")
		viper.SetDefault("EXPORT_ENDPOINT", "")
		viper.SetDefault("EXPORT_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_SECRET_KEY", "")
		viper.SetDefault("EXPORT_REGION", "")
		viper.SetDefault("EXPORT_USE_SSL", true)

		viper.AutomaticEnv()

		ensureDir(viper.GetString("EXPORT_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				AggregateTTLSecs: viper.GetInt("CACHE_AGGREGATE_TTL_SECONDS"),
			},
			Analytics: AnalyticsConfig{
				HistoryDays:     viper.GetInt("ANALYTICS_HISTORY_DAYS"),
				ForecastDays:    viper.GetInt("ANALYTICS_FORECAST_DAYS"),
				LeadTimeDays:    viper.GetInt("ANALYTICS_LEAD_TIME_DAYS"),
				WorkerCount:     viper.GetInt("ANALYTICS_WORKER_COUNT"),
				BatchDeadline:   time.Duration(viper.GetInt("ANALYTICS_BATCH_DEADLINE_SECONDS")) * time.Second,
				HotTopN:         viper.GetInt("ANALYTICS_HOT_TOP_N"),
				TransferCover:   viper.GetInt("ANALYTICS_TRANSFER_COVER_DAYS"),
				StockoutHorizon: viper.GetInt("ANALYTICS_STOCKOUT_HORIZON_DAYS"),
			},
			Policy: PolicyConfig{
				ForecastWeightedAvg:   viper.GetFloat64("POLICY_FORECAST_WEIGHTED_AVG"),
				ForecastTrendAvg:      viper.GetFloat64("POLICY_FORECAST_TREND_AVG"),
				ForecastMovingAvg7:    viper.GetFloat64("POLICY_FORECAST_MOVING_AVG_7"),
				ForecastSimpleAvg:     viper.GetFloat64("POLICY_FORECAST_SIMPLE_AVG"),
				SafetyStockFactor:     viper.GetFloat64("POLICY_SAFETY_STOCK_FACTOR"),
				OverstockDaysLimit:    viper.GetFloat64("POLICY_OVERSTOCK_DAYS_LIMIT"),
				StockoutHorizonDays:   viper.GetFloat64("POLICY_STOCKOUT_HORIZON_DAYS"),
				ListingImageWeight:    viper.GetFloat64("POLICY_LISTING_IMAGE_WEIGHT"),
				ListingStockWeight:    viper.GetFloat64("POLICY_LISTING_STOCK_WEIGHT"),
				ListingTurnoverWeight: viper.GetFloat64("POLICY_LISTING_TURNOVER_WEIGHT"),
				ListingMarginWeight:   viper.GetFloat64("POLICY_LISTING_MARGIN_WEIGHT"),
				ListingRevenueWeight:  viper.GetFloat64("POLICY_LISTING_REVENUE_WEIGHT"),
				ListingTrendWeight:    viper.GetFloat64("POLICY_LISTING_TREND_WEIGHT"),
				TurnoverFastRate:      viper.GetFloat64("POLICY_TURNOVER_FAST_RATE"),
				TurnoverMediumRate:    viper.GetFloat64("POLICY_TURNOVER_MEDIUM_RATE"),
				TurnoverSlowRate:      viper.GetFloat64("POLICY_TURNOVER_SLOW_RATE"),
				HealthServiceWeight:   viper.GetFloat64("POLICY_HEALTH_SERVICE_WEIGHT"),
				HealthStockoutWeight:  viper.GetFloat64("POLICY_HEALTH_STOCKOUT_WEIGHT"),
				HealthOverstockWeight: viper.GetFloat64("POLICY_HEALTH_OVERSTOCK_WEIGHT"),
				TransferCriticalDays:  viper.GetFloat64("POLICY_TRANSFER_CRITICAL_DAYS"),
				TransferHighDays:      viper.GetFloat64("POLICY_TRANSFER_HIGH_DAYS"),
				TransferHotBonus:      viper.GetFloat64("POLICY_TRANSFER_HOT_BONUS"),
			},
			Export: ExportConfig{
				OutputDir: viper.GetString("EXPORT_OUTPUT_DIR"),
				Bucket:    viper.GetString("EXPORT_BUCKET"),
				Endpoint:  viper.GetString("EXPORT_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_SECRET_KEY"),
				Region:    viper.GetString("EXPORT_REGION"),
				UseSSL:    viper.GetBool("EXPORT_USE_SSL"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
