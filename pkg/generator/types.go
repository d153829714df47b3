package generator

import (
	"context"
	"net/http"
	"time"
)

const (
	roleUser          = "user"
	contentTypeText   = "text"
	contentTypeImage  = "image_url"
	modalityImage     = "image"
	modalityText      = "text"
	maxResponseBytes  = 50 * 1024 * 1024
	refCacheDuration  = 30 * time.Minute
)

// HTTPClient は、URL からデータを取得するためのインターフェースなのだ。
// httpkit.ClientInterface がこれを満たすのだ。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// HTTPDoer は、ステータスコードの判別が必要な生のリクエスト実行インターフェースなのだ。
// *http.Client がこれを満たすのだ。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ImageCacher は、参照画像をキャッシュするためのインターフェースなのだ。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Options はクライアントの動作設定なのだ。
type Options struct {
	APIURL             string
	APIKey             string
	MaxRetries         int
	RetryDelay         time.Duration
	InterRequestDelay  time.Duration
	MaxReferenceImages int
	DryRun             bool
}

// GenerateParams は画像1枚分の生成パラメータなのだ。
type GenerateParams struct {
	Prompt      string
	Model       string
	AspectRatio string

	// 目標サイズ。どちらかが 0 ならアスペクト比補正は行わないのだ
	Width  int
	Height int

	// システム参照画像のディレクトリ。空文字なら参照画像を添付しないのだ
	ReferenceDir string

	// 呼び出し元が指定する追加参照画像（ローカルパスまたは URL）なのだ
	UserReferences []string

	// リクエスト単位の API キー上書きなのだ
	APIKey string
}

// RefineParams は既存画像の編集リクエストのパラメータなのだ。
type RefineParams struct {
	BaseImage       []byte
	StyleReferences []string
	Instructions    string
	Model           string
	APIKey          string
}

// --- OpenRouter chat/completions のワイヤ型 ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Modalities  []string      `json:"modalities"`
	ImageConfig *imageConfig  `json:"image_config,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type imageConfig struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Images []struct {
				ImageURL imageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}
