package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Weather  WeatherConfig
	News     NewsConfig
	Clap     ClapConfig
	Launcher LauncherConfig
	Speech   SpeechConfig
	Session  SessionConfig
	Proxy    ProxyConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	weather, err := loadWeatherConfig()
	if err != nil {
		return nil, err
	}

	news, err := loadNewsConfig()
	if err != nil {
		return nil, err
	}

	clap, err := loadClapConfig()
	if err != nil {
		return nil, err
	}

	launcher, err := loadLauncherConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		Weather:  weather,
		News:     news,
		Clap:     clap,
		Launcher: launcher,
		Speech:   speech,
		Session:  session,
		Proxy:    ProxyConfig{SOCKSAddr: strings.TrimSpace(os.Getenv("SOCKS_PROXY"))},
		Log:      logCfg,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8001"
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	origins := parseListEnv("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:5173",
		"https://localhost:5173",
		"http://127.0.0.1:5173",
		"https://127.0.0.1:5173",
	})

	cfg := ServerConfig{AllowedOrigins: origins, ShutdownTimeout: shutdownTimeout}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8001" 或 "127.0.0.1:8001"。
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

// AIConfig 描述知识问答所用的大模型配置，按 Providers 顺序依次尝试。
type AIConfig struct {
	Providers []string
	Timeout   time.Duration
	Ark       ArkConfig
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// GeminiConfig 描述 Gemini 配置，Models 为模型优先级列表。
type GeminiConfig struct {
	APIKey string
	Models []string
}

// OpenAIConfig 描述 OpenAI 兼容接口配置。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Models  []string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// Enabled 表示是否提供了 Gemini 密钥。
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled 表示是否提供了 OpenAI 密钥与模型。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && len(c.Models) > 0
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 10*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if geminiKey == "" {
		geminiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}

	return AIConfig{
		Providers: parseListEnv("AI_PROVIDERS", []string{"gemini", "ark", "openai"}),
		Timeout:   timeout,
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		},
		Gemini: GeminiConfig{
			APIKey: geminiKey,
			Models: parseListEnv("GEMINI_MODELS", []string{
				"gemini-1.5-flash", "gemini-1.5-pro", "gemini-1.0-pro", "gemini-pro",
			}),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
			Models:  parseListEnv("OPENAI_MODELS", []string{"gpt-4o-mini"}),
		},
	}, nil
}

// WeatherConfig 描述天气查询配置。
type WeatherConfig struct {
	DefaultCity  string
	GeocodingURL string
	ForecastURL  string
	FallbackURL  string
	Timeout      time.Duration
}

func loadWeatherConfig() (WeatherConfig, error) {
	timeout, err := parseDurationEnv("WEATHER_TIMEOUT", 5*time.Second)
	if err != nil {
		return WeatherConfig{}, err
	}

	return WeatherConfig{
		DefaultCity:  getEnvOrDefault("WEATHER_DEFAULT_CITY", "New York"),
		GeocodingURL: getEnvOrDefault("WEATHER_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastURL:  getEnvOrDefault("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		FallbackURL:  getEnvOrDefault("WEATHER_FALLBACK_URL", "https://wttr.in"),
		Timeout:      timeout,
	}, nil
}

// NewsConfig 描述新闻头条配置。
type NewsConfig struct {
	APIKey      string
	BaseURL     string
	MaxArticles int
	Timeout     time.Duration
}

func loadNewsConfig() (NewsConfig, error) {
	timeout, err := parseDurationEnv("NEWS_TIMEOUT", 10*time.Second)
	if err != nil {
		return NewsConfig{}, err
	}

	maxArticles, err := parseIntEnv("NEWS_MAX_ARTICLES", 5)
	if err != nil {
		return NewsConfig{}, err
	}
	if maxArticles < 1 {
		maxArticles = 1
	}

	return NewsConfig{
		APIKey:      strings.TrimSpace(os.Getenv("GNEWS_API_KEY")),
		BaseURL:     getEnvOrDefault("GNEWS_BASE_URL", "https://gnews.io/api/v4/top-headlines"),
		MaxArticles: maxArticles,
		Timeout:     timeout,
	}, nil
}

// ClapConfig 描述拍手触发检测配置。
type ClapConfig struct {
	Enabled     bool
	Threshold   int
	Debounce    time.Duration
	Window      time.Duration
	Settle      time.Duration
	JoinTimeout time.Duration
	SampleRate  int
	FrameSize   int
	Query       string
	Chime       bool
}

func loadClapConfig() (ClapConfig, error) {
	enabled, err := parseBoolEnv("CLAP_ENABLED", true)
	if err != nil {
		return ClapConfig{}, err
	}

	chime, err := parseBoolEnv("CLAP_CHIME", false)
	if err != nil {
		return ClapConfig{}, err
	}

	threshold, err := parseIntEnv("CLAP_THRESHOLD", 4000)
	if err != nil {
		return ClapConfig{}, err
	}
	if threshold <= 0 || threshold > 32767 {
		return ClapConfig{}, fmt.Errorf("invalid CLAP_THRESHOLD value %d: must be within 1..32767", threshold)
	}

	sampleRate, err := parseIntEnv("CLAP_SAMPLE_RATE", 44100)
	if err != nil {
		return ClapConfig{}, err
	}

	frameSize, err := parseIntEnv("CLAP_FRAME_SIZE", 1024)
	if err != nil {
		return ClapConfig{}, err
	}
	if sampleRate <= 0 || frameSize <= 0 {
		return ClapConfig{}, fmt.Errorf("invalid clap audio format: rate=%d frame=%d", sampleRate, frameSize)
	}

	debounce, err := parseDurationEnv("CLAP_DEBOUNCE", 150*time.Millisecond)
	if err != nil {
		return ClapConfig{}, err
	}

	window, err := parseDurationEnv("CLAP_WINDOW", 3*time.Second)
	if err != nil {
		return ClapConfig{}, err
	}

	settle, err := parseDurationEnv("CLAP_SETTLE", 2*time.Second)
	if err != nil {
		return ClapConfig{}, err
	}

	join, err := parseDurationEnv("CLAP_JOIN_TIMEOUT", time.Second)
	if err != nil {
		return ClapConfig{}, err
	}

	return ClapConfig{
		Enabled:     enabled,
		Threshold:   threshold,
		Debounce:    debounce,
		Window:      window,
		Settle:      settle,
		JoinTimeout: join,
		SampleRate:  sampleRate,
		FrameSize:   frameSize,
		Query:       getEnvOrDefault("CLAP_QUERY", "Sao Paulo Song"),
		Chime:       chime,
	}, nil
}

// LauncherConfig 描述本地应用启动配置。
type LauncherConfig struct {
	AllowShutdown bool
	AppsFile      string
}

func loadLauncherConfig() (LauncherConfig, error) {
	allow, err := parseBoolEnv("LAUNCHER_ALLOW_SHUTDOWN", false)
	if err != nil {
		return LauncherConfig{}, err
	}
	return LauncherConfig{
		AllowShutdown: allow,
		AppsFile:      strings.TrimSpace(os.Getenv("LAUNCHER_APPS_FILE")),
	}, nil
}

// SpeechConfig 描述本地语音输出配置。
type SpeechConfig struct {
	Engine string
	Voice  string
	Rate   int
}

func loadSpeechConfig() (SpeechConfig, error) {
	rate, err := parseIntEnv("SPEECH_RATE", 165)
	if err != nil {
		return SpeechConfig{}, err
	}

	engine := strings.ToLower(getEnvOrDefault("SPEECH_ENGINE", "console"))
	switch engine {
	case "console", "espeak":
	default:
		return SpeechConfig{}, fmt.Errorf("invalid SPEECH_ENGINE value %q: want console or espeak", engine)
	}

	return SpeechConfig{
		Engine: engine,
		Voice:  getEnvOrDefault("SPEECH_VOICE", "en+f3"),
		Rate:   rate,
	}, nil
}

// SessionConfig 描述会话状态配置。
type SessionConfig struct {
	HistoryLimit int
}

func loadSessionConfig() (SessionConfig, error) {
	limit, err := parseIntEnv("HISTORY_LIMIT", 10)
	if err != nil {
		return SessionConfig{}, err
	}
	if limit < 1 {
		limit = 1
	}
	return SessionConfig{HistoryLimit: limit}, nil
}

// ProxyConfig 描述出站 HTTP 代理。
type ProxyConfig struct {
	SOCKSAddr string
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level slog.Level
}

func loadLogConfig() (LogConfig, error) {
	raw := getEnvOrDefault("LOG_LEVEL", "info")
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", raw, err)
	}
	return LogConfig{Level: level}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

// parseListEnv 解析逗号分隔的列表，空值时返回默认值。
func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
