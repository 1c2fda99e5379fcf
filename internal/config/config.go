// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds every tunable the evaluator reads at startup.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Storage.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisPass   string `env:"REDIS_PASSWORD"`

	CacheTTL time.Duration `env:"JUDGMENT_CACHE_TTL" envDefault:"30m"`

	// OpenRouter.
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	OpenRouterReferer string `env:"OPENROUTER_REFERER" envDefault:"https://hireloop.dev"`
	OpenRouterTitle   string `env:"OPENROUTER_TITLE" envDefault:"ai-hiring-evaluator"`

	// DeepSeek.
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	DeepSeekModel   string `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`

	// Hugging Face inference.
	HFAPIKey           string `env:"HF_API_KEY"`
	HFBaseURL          string `env:"HF_BASE_URL" envDefault:"https://api-inference.huggingface.co/models"`
	HFTextModel        string `env:"HF_TEXT_MODEL" envDefault:"mistralai/Mistral-7B-Instruct-v0.3"`
	HFZeroShotModel    string `env:"HF_ZERO_SHOT_MODEL" envDefault:"facebook/bart-large-mnli"`
	HFFaceModel        string `env:"HF_FACE_MODEL" envDefault:"trpakov/vit-face-expression"`
	HFVoiceModel       string `env:"HF_VOICE_MODEL" envDefault:"superb/hubert-large-superb-er"`
	HFObjectModel      string `env:"HF_OBJECT_MODEL" envDefault:"facebook/detr-resnet-50"`

	// Gemini.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// Ollama is key-less; it participates only when a base URL is set.
	OllamaBaseURL string `env:"OLLAMA_BASE_URL"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llama3.1"`

	// Per-class provider call timeouts.
	AnalysisTimeout   time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"30s"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	MediaTimeout      time.Duration `env:"MEDIA_TIMEOUT" envDefault:"15s"`

	// Provider order per task class, first entry tried first.
	AnswerProviders   []string `env:"ANSWER_PROVIDERS" envSeparator:"," envDefault:"openrouter,deepseek,huggingface"`
	QuestionProviders []string `env:"QUESTION_PROVIDERS" envSeparator:"," envDefault:"openrouter,deepseek,huggingface"`
	GradingProviders  []string `env:"GRADING_PROVIDERS" envSeparator:"," envDefault:"openrouter,gemini,ollama"`
	ResumeProviders   []string `env:"RESUME_PROVIDERS" envSeparator:"," envDefault:"huggingface,openrouter"`

	// Composite weights for the physical interview score.
	ConfidenceWeight   float64 `env:"CONFIDENCE_WEIGHT" envDefault:"0.5"`
	VoiceWeight        float64 `env:"VOICE_WEIGHT" envDefault:"0.3"`
	BodyLanguageWeight float64 `env:"BODY_LANGUAGE_WEIGHT" envDefault:"0.2"`

	// Resume similarity.
	SimilarityThreshold float64 `env:"SIMILARITY_THRESHOLD" envDefault:"0.75"`

	// Question generation bounds.
	MinQuestions     int    `env:"MIN_QUESTIONS" envDefault:"5"`
	MaxQuestions     int    `env:"MAX_QUESTIONS" envDefault:"10"`
	DefaultQuestions int    `env:"DEFAULT_QUESTIONS" envDefault:"5"`
	QuestionBankPath string `env:"QUESTION_BANK_PATH"`

	MaxPromptTokens int `env:"MAX_PROMPT_TOKENS" envDefault:"6000"`

	// HTTP surface.
	RateLimitPerMin   int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	CORSAllowOrigins  []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Observability.
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"ai-hiring-evaluator"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
}

// Load parses configuration from process environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MinQuestions <= 0 || c.MaxQuestions < c.MinQuestions {
		return fmt.Errorf("question bounds invalid: min=%d max=%d", c.MinQuestions, c.MaxQuestions)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold out of range: %v", c.SimilarityThreshold)
	}
	return nil
}

func (c Config) IsDev() bool  { return strings.EqualFold(c.AppEnv, "dev") }
func (c Config) IsProd() bool { return strings.EqualFold(c.AppEnv, "prod") }
func (c Config) IsTest() bool { return strings.EqualFold(c.AppEnv, "test") }
