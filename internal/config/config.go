package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultFileName - файл конфигурации, который ищется в рабочем каталоге, если путь не задан явно.
const DefaultFileName = "config.json"

// Config представляет основную конфигурацию агрегатора AI-новостей.
// Содержит настройки конвейера, источников, выходных артефактов и внешних хранилищ.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Logger   LoggerConfig   `json:"logger" yaml:"logger"`
	App      AppConfig      `json:"app" yaml:"app"`
	NewsAPI  NewsAPIConfig  `json:"news_api" yaml:"news_api"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
}

// ServerConfig содержит настройки HTTP-сервера режима serve.
// RateLimit - запросов в секунду на весь API, 0 отключает ограничение.
type ServerConfig struct {
	Address        string   `json:"address" yaml:"address"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
	RateLimit      float64  `json:"rate_limit" yaml:"rate_limit"`
	RateBurst      int      `json:"rate_burst" yaml:"rate_burst"`
}

// LoggerConfig содержит настройки системы логирования.
// Output и ErrorOutput принимают "stdout", "stderr" или путь к файлу.
type LoggerConfig struct {
	Level       string `json:"level" yaml:"level"`
	Output      string `json:"output" yaml:"output"`
	ErrorOutput string `json:"error_output" yaml:"error_output"`
}

// FeedURL представляет конфигурацию отдельной RSS-ленты.
type FeedURL struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// AppConfig содержит параметры конвейера: список лент, таймауты, задержки и лимиты.
type AppConfig struct {
	FeedURLs           []FeedURL `json:"feed_urls" yaml:"feed_urls"`
	RequestTimeout     string    `json:"request_timeout" yaml:"request_timeout"`
	FeedDelay          string    `json:"feed_delay" yaml:"feed_delay"`
	APIDelay           string    `json:"api_delay" yaml:"api_delay"`
	MaxItemsPerFeed    int       `json:"max_items_per_feed" yaml:"max_items_per_feed"`
	MaxItemsPerQuery   int       `json:"max_items_per_query" yaml:"max_items_per_query"`
	MaxArticles        int       `json:"max_articles" yaml:"max_articles"`
	ImportantThreshold int       `json:"important_threshold" yaml:"important_threshold"`
	UserAgent          string    `json:"user_agent" yaml:"user_agent"`
}

// NewsAPIConfig описывает поисковый API новостей. Пустой APIKey отключает источник.
type NewsAPIConfig struct {
	APIKey     string   `json:"api_key" yaml:"api_key"`
	BaseURL    string   `json:"base_url" yaml:"base_url"`
	Language   string   `json:"language" yaml:"language"`
	SortBy     string   `json:"sort_by" yaml:"sort_by"`
	PageSize   int      `json:"page_size" yaml:"page_size"`
	MaxQueries int      `json:"max_queries" yaml:"max_queries"`
	Queries    []string `json:"queries" yaml:"queries"`
}

// OutputConfig описывает каталог и параметры статических артефактов.
type OutputConfig struct {
	Dir                string `json:"dir" yaml:"dir"`
	ImportantThreshold int    `json:"important_threshold" yaml:"important_threshold"`
	RSSItems           int    `json:"rss_items" yaml:"rss_items"`
	SiteTitle          string `json:"site_title" yaml:"site_title"`
	SiteLink           string `json:"site_link" yaml:"site_link"`
}

// ScheduleConfig задает расписание сбора в режиме serve в формате cron.
type ScheduleConfig struct {
	Cron       string `json:"cron" yaml:"cron"`
	RunOnStart bool   `json:"run_on_start" yaml:"run_on_start"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL для архива статей.
// Архив включается флагом Enabled или непустым URL.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	URL      string `json:"url" yaml:"url"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`
}

// RedisConfig описывает общий снимок последнего прогона. Пустой Address отключает Redis.
type RedisConfig struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Key      string `json:"key" yaml:"key"`
	// LocalTTL - сколько локальная копия снимка живет до повторного чтения из Redis.
	LocalTTL string `json:"local_ttl" yaml:"local_ttl"`
}

// IsEnabled сообщает, настроен ли архив в PostgreSQL.
func (c *DatabaseConfig) IsEnabled() bool {
	return c.Enabled || c.URL != ""
}

// DSN возвращает строку подключения к PostgreSQL в формате URI.
// Явно заданный URL имеет приоритет над отдельными полями.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode)
}

func (c *RedisConfig) IsEnabled() bool { return c.Address != "" }

func (c *RedisConfig) LocalTTLDuration() time.Duration {
	return mustDuration(c.LocalTTL)
}

func (c *AppConfig) RequestTimeoutDuration() time.Duration {
	return mustDuration(c.RequestTimeout)
}

func (c *AppConfig) FeedDelayDuration() time.Duration {
	return mustDuration(c.FeedDelay)
}

func (c *AppConfig) APIDelayDuration() time.Duration {
	return mustDuration(c.APIDelay)
}

// mustDuration вызывается только после Validate, поэтому ошибка разбора сводится к нулю.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      10,
			RateBurst:      20,
		},
		Logger: LoggerConfig{
			Level:       "info",
			Output:      "stdout",
			ErrorOutput: "stderr",
		},
		App: AppConfig{
			FeedURLs:           DefaultFeeds(),
			RequestTimeout:     "15s",
			FeedDelay:          "1500ms",
			APIDelay:           "2s",
			MaxItemsPerFeed:    5,
			MaxItemsPerQuery:   6,
			MaxArticles:        20,
			ImportantThreshold: 7,
			UserAgent:          "ainews/1.0 (+https://github.com)",
		},
		NewsAPI: NewsAPIConfig{
			BaseURL:    "https://newsapi.org/v2/everything",
			Language:   "ja",
			SortBy:     "publishedAt",
			PageSize:   8,
			MaxQueries: 3,
			Queries: []string{
				`ChatGPT OR "GPT-4" OR Claude OR Gemini`,
				`OpenAI OR Anthropic OR "Google AI"`,
				`AI OR "人工知能" OR "機械学習"`,
			},
		},
		Output: OutputConfig{
			Dir:                "data",
			ImportantThreshold: 6,
			RSSItems:           10,
			SiteTitle:          "AI News Digest",
			SiteLink:           "https://example.com/",
		},
		Schedule: ScheduleConfig{
			Cron:       "0 9,18 * * *",
			RunOnStart: true,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Key:      "ainews:latest",
			LocalTTL: "30s",
		},
	}
}

// DefaultFeeds возвращает набор RSS-лент, используемый при отсутствии конфигурации.
func DefaultFeeds() []FeedURL {
	return []FeedURL{
		{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml"},
		{Name: "Google AI Blog", URL: "https://ai.googleblog.com/feeds/posts/default"},
		{Name: "MIT Tech Review AI", URL: "https://www.technologyreview.com/topic/artificial-intelligence/feed/"},
		{Name: "VentureBeat AI", URL: "https://venturebeat.com/ai/feed/"},
		{Name: "ITmedia AI", URL: "https://www.itmedia.co.jp/ai/rss/rss2.xml"},
		{Name: "AI-SCHOLAR", URL: "https://ai-scholar.tech/feed/"},
	}
}

// Load загружает конфигурацию из файла по указанному пути.
// Формат определяется расширением: .yaml/.yml - YAML, остальное - JSON.
// Незаданные поля получают значения по умолчанию, затем применяются переменные окружения.
func Load(configPath string) (*Config, error) {
	cfg := New()
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from file %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Resolve находит и загружает конфигурацию. Явный путь обязан существовать;
// без него проверяются config.json в рабочем каталоге и XDG-каталог пользователя,
// а при их отсутствии используются значения по умолчанию.
// Возвращает путь к загруженному файлу или пустую строку.
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	for _, candidate := range []string{DefaultFileName, XDGPath()} {
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			return cfg, candidate, err
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to stat config file %s: %w", candidate, err)
		}
	}
	cfg := New()
	cfg.ApplyEnv()
	return cfg, "", nil
}

// XDGPath возвращает путь к пользовательскому файлу конфигурации.
func XDGPath() string {
	return filepath.Join(xdg.ConfigHome, "ainews", "config.yaml")
}

// ApplyEnv переопределяет секреты и адреса значениями из окружения.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("IMPORTANT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.App.ImportantThreshold = n
		}
	}
}

// Validate проверяет корректность конфигурации.
// Возвращает ошибку с описанием первой найденной проблемы.
func (c *Config) Validate() error {
	for _, feed := range c.App.FeedURLs {
		if _, err := url.ParseRequestURI(feed.URL); err != nil {
			return fmt.Errorf("invalid url in app.feed_urls: %s", feed.URL)
		}
		if feed.Name == "" {
			return fmt.Errorf("feed name cannot be empty for url: %s", feed.URL)
		}
	}
	if d, err := time.ParseDuration(c.Redis.LocalTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid redis.local_ttl: %q", c.Redis.LocalTTL)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst cannot be negative")
	}
	if d, err := time.ParseDuration(c.App.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid app.request_timeout: %q", c.App.RequestTimeout)
	}
	if d, err := time.ParseDuration(c.App.FeedDelay); err != nil || d < 0 {
		return fmt.Errorf("invalid app.feed_delay: %q", c.App.FeedDelay)
	}
	if d, err := time.ParseDuration(c.App.APIDelay); err != nil || d < 0 {
		return fmt.Errorf("invalid app.api_delay: %q", c.App.APIDelay)
	}
	if c.App.MaxItemsPerFeed <= 0 {
		return fmt.Errorf("app.max_items_per_feed must be a positive number")
	}
	if c.App.MaxItemsPerQuery <= 0 {
		return fmt.Errorf("app.max_items_per_query must be a positive number")
	}
	if c.App.MaxArticles <= 0 {
		return fmt.Errorf("app.max_articles must be a positive number")
	}
	if c.App.ImportantThreshold < 1 || c.App.ImportantThreshold > 10 {
		return fmt.Errorf("app.important_threshold must be within [1,10]")
	}
	if c.NewsAPI.APIKey != "" {
		if _, err := url.ParseRequestURI(c.NewsAPI.BaseURL); err != nil {
			return fmt.Errorf("invalid news_api.base_url: %s", c.NewsAPI.BaseURL)
		}
		if c.NewsAPI.MaxQueries <= 0 {
			return fmt.Errorf("news_api.max_queries must be a positive number")
		}
		if c.NewsAPI.PageSize <= 0 {
			return fmt.Errorf("news_api.page_size must be a positive number")
		}
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is not set")
	}
	if c.Output.RSSItems <= 0 {
		return fmt.Errorf("output.rss_items must be a positive number")
	}
	if c.Database.IsEnabled() && c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is not set")
		}
		if c.Database.Username == "" {
			return fmt.Errorf("database username is not set")
		}
	}
	return nil
}
