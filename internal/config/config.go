package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// デフォルト値の定義なのだ
const (
	DefaultAPIURL             = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModelFlash         = "google/gemini-2.5-flash-image-preview"
	DefaultModelPro           = "google/gemini-3-pro-image-preview"
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = 2 * time.Second
	DefaultRequestTimeout     = 120 * time.Second
	DefaultDownloadTimeout    = 30 * time.Second
	DefaultInterRequestDelay  = 1 * time.Second
	DefaultMaxReferenceImages = 2
	DefaultImagesPerPrompt    = 4
	DefaultAspectTolerance    = 0.05
	DefaultMinFileSize        = 10 * 1024        // 10KiB
	DefaultMaxFileSize        = 10 * 1024 * 1024 // 10MiB
	DefaultCategoriesFile     = "config/image_categories.yaml"
	DefaultOutputDir          = "output/generated_images"
)

// DefaultCategory は --category 未指定時の既定カテゴリなのだ。
const DefaultCategory = domain.CategorySubtopicCover

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
// 元実装のドット記法キー（'api.max_retries' 等）は、コンパイル時に検証できる
// 型付きフィールドとして表現しているのだ。
type Config struct {
	// --- Remote API Settings ---
	APIURL             string
	APIKey             string // OPENROUTER_API_KEY
	ModelFlash         string
	ModelPro           string
	MaxRetries         int
	RetryDelay         time.Duration
	RequestTimeout     time.Duration
	DownloadTimeout    time.Duration
	InterRequestDelay  time.Duration
	MaxReferenceImages int

	// --- Generation Settings ---
	ImagesPerPrompt int
	DryRun          bool

	// --- Validation Settings ---
	AspectTolerance float64
	MinFileSize     int
	MaxFileSize     int

	// --- Paths ---
	CategoriesFile string
	OutputDir      string
	SaveMetadata   bool

	// Options は CLI フラグ由来の実行時パラメータなのだ
	Options GenerateOptions

	categories map[string]domain.CategoryConfig
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 生成リクエスト関連
	Category  string // --category
	Input     string // --input
	Count     int    // --count
	YearLevel string // --year-level
	Age       string // --age
	Context   string // --context

	// モデル・スタイル設定
	Models      []string // --models: "flash" / "pro" の集合
	Orientation string   // --orientation: "landscape" / "portrait"
	Style       string   // --style

	// 参照画像・出力設定
	ReferenceImages []string // --reference-image
	OutputDir       string   // --output-dir
	DryRun          bool     // --dry-run

	// refine サブコマンド用
	BaseImage    string // --base-image
	Instructions string // --instructions
}

// Load は .env（あれば）と環境変数から設定を読み込み、カテゴリ定義をロードするのだ。
func Load() (*Config, error) {
	// .env はローカル開発用の補助なので、無くてもエラーにしないのだ
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:             envutil.GetEnv("OPENROUTER_API_URL", DefaultAPIURL),
		APIKey:             envutil.GetEnv("OPENROUTER_API_KEY", ""),
		ModelFlash:         envutil.GetEnv("IMAGE_MODEL_FLASH", DefaultModelFlash),
		ModelPro:           envutil.GetEnv("IMAGE_MODEL_PRO", DefaultModelPro),
		MaxRetries:         getEnvInt("API_MAX_RETRIES", DefaultMaxRetries),
		RetryDelay:         getEnvDuration("API_RETRY_DELAY", DefaultRetryDelay),
		RequestTimeout:     getEnvDuration("API_TIMEOUT", DefaultRequestTimeout),
		DownloadTimeout:    DefaultDownloadTimeout,
		InterRequestDelay:  getEnvDuration("API_REQUEST_INTERVAL", DefaultInterRequestDelay),
		MaxReferenceImages: DefaultMaxReferenceImages,
		ImagesPerPrompt:    getEnvInt("IMAGES_PER_PROMPT", DefaultImagesPerPrompt),
		AspectTolerance:    DefaultAspectTolerance,
		MinFileSize:        DefaultMinFileSize,
		MaxFileSize:        DefaultMaxFileSize,
		CategoriesFile:     envutil.GetEnv("IMAGE_CATEGORIES_FILE", DefaultCategoriesFile),
		OutputDir:          envutil.GetEnv("OUTPUT_DIR", DefaultOutputDir),
		SaveMetadata:       true,
	}

	categories, err := LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ定義のロードに失敗しました: %w", err)
	}
	cfg.categories = categories

	return cfg, nil
}

// Category は名前でカテゴリ設定を取得するのだ。
func (c *Config) Category(name domain.Category) (domain.CategoryConfig, error) {
	cat, ok := c.categories[string(name)]
	if !ok {
		return domain.CategoryConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, name)
	}
	return cat, nil
}

// Categories は全カテゴリ設定を返すのだ（読み取り専用として扱うこと）。
func (c *Config) Categories() map[string]domain.CategoryConfig {
	return c.categories
}

// SetCategories はテストやカスタムロード用にカテゴリ定義を差し替えるのだ。
func (c *Config) SetCategories(categories map[string]domain.CategoryConfig) {
	c.categories = categories
}

// IsDryRun はドライランモードかどうかを返すのだ。
// 環境変数 DRY_RUN が設定ファイルより常に優先されるのだ。
func (c *Config) IsDryRun() bool {
	switch strings.ToLower(os.Getenv("DRY_RUN")) {
	case "true", "1", "yes":
		return true
	}
	return c.DryRun
}

// ReferenceImageDir はカテゴリのシステム参照画像ディレクトリを返すのだ。
func (c *Config) ReferenceImageDir(name domain.Category) (string, error) {
	cat, err := c.Category(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(cat.ReferenceDir, "images"), nil
}

// StyleGuideFile はカテゴリのスタイルガイド（description.txt）のパスを返すのだ。
func (c *Config) StyleGuideFile(name domain.Category) (string, error) {
	cat, err := c.Category(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(cat.ReferenceDir, "description.txt"), nil
}

func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	// "2s" 形式と秒数のみの "2" 形式の両方を受け付けるのだ
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
