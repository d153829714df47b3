// Package generator は OpenRouter 経由のマルチモーダル画像生成クライアントなのだ。
// リトライ・参照画像の添付・レスポンスのデコード・アスペクト比補正までを担当するのだ。
package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/shouni/go-eduimage-kit/pkg/imgutil"
)

// 致命的エラーなのだ。リトライせず、バッチ全体を中断させるのだ。
var (
	ErrAPIKeyMissing = errors.New("APIキーが設定されていません")
	ErrAPIKeyInvalid = errors.New("APIキーが無効です (401)")
)

// errNoImage はレスポンスに画像が含まれなかった場合の一時エラーなのだ。
var errNoImage = errors.New("レスポンスに画像が含まれていません")

// IsFatal はバッチ全体を中断すべきエラーかどうかを判定するのだ。
func IsFatal(err error) bool {
	return errors.Is(err, ErrAPIKeyMissing) || errors.Is(err, ErrAPIKeyInvalid)
}

// Client は画像生成 API クライアントなのだ。
type Client struct {
	opts     Options
	doer     HTTPDoer
	fetcher  HTTPClient
	refCache ImageCacher
	limiter  *rate.Limiter

	// テストから差し替えるためのシームなのだ
	sleep    func(ctx context.Context, d time.Duration) error
	readFile func(string) ([]byte, error)
	readDir  func(string) ([]os.DirEntry, error)
}

// New は画像生成クライアントを生成するのだ。
// doer は chat/completions への POST（ステータス判別が必要）に、
// fetcher は生成画像 URL や参照画像のダウンロードに使われるのだ。
func New(opts Options, doer HTTPDoer, fetcher HTTPClient) *Client {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InterRequestDelay <= 0 {
		opts.InterRequestDelay = time.Second
	}

	return &Client{
		opts:     opts,
		doer:     doer,
		fetcher:  fetcher,
		refCache: cache.New(refCacheDuration, 10*time.Minute),
		limiter:  rate.NewLimiter(rate.Every(opts.InterRequestDelay), 1),
		sleep:    sleepContext,
		readFile: os.ReadFile,
		readDir:  os.ReadDir,
	}
}

// GenerateImage はプロンプト1件から画像1枚を生成するのだ。
//
// ドライランモードでは通信せず (nil, nil) を返すのだ。呼び出し元はこれを
// エラーとは区別される「画像なしの正常終了」として扱う必要があるのだ。
// APIキーが解決できない場合と 401 応答は致命的エラーとして即座に返し、
// それ以外の失敗は MaxRetries+1 回まで試行するのだ。
func (c *Client) GenerateImage(ctx context.Context, p GenerateParams) ([]byte, error) {
	if c.opts.DryRun {
		slog.Info("ドライランモード: 画像生成をスキップします", "model", p.Model)
		return nil, nil
	}

	apiKey := p.APIKey
	if apiKey == "" {
		apiKey = c.opts.APIKey
	}
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	content, err := c.buildContent(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("リクエスト内容の構築に失敗しました: %w", err)
	}

	payload := chatRequest{
		Model:      p.Model,
		Messages:   []chatMessage{{Role: roleUser, Content: content}},
		Modalities: []string{modalityImage, modalityText},
	}
	if p.AspectRatio != "" || (p.Width > 0 && p.Height > 0) {
		payload.ImageConfig = &imageConfig{
			AspectRatio: p.AspectRatio,
			Width:       p.Width,
			Height:      p.Height,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	attempts := c.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			slog.Warn("画像生成をリトライします",
				"attempt", attempt, "max_attempts", attempts, "error", lastErr)
			if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
				return nil, err
			}
		}

		data, err := c.attempt(ctx, apiKey, body)
		if err == nil {
			if p.Width > 0 && p.Height > 0 {
				data = imgutil.CorrectAspectRatio(data, p.Width, p.Height)
			}
			return data, nil
		}
		if IsFatal(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("画像生成が%d回の試行後も失敗しました: %w", attempts, lastErr)
}

// RefineImage は既存画像に編集指示を適用した新しい画像を返すのだ。
// リトライと致命的エラーの扱いは GenerateImage と同一だが、
// 出力サイズはモデルが維持する前提でアスペクト比補正は行わないのだ。
func (c *Client) RefineImage(ctx context.Context, p RefineParams) ([]byte, error) {
	if c.opts.DryRun {
		slog.Info("ドライランモード: 画像編集をスキップします", "model", p.Model)
		return nil, nil
	}

	apiKey := p.APIKey
	if apiKey == "" {
		apiKey = c.opts.APIKey
	}
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	content := []contentPart{
		{Type: contentTypeImage, ImageURL: &imageRef{URL: toDataURL(p.BaseImage, "image/png")}},
	}
	for _, ref := range p.StyleReferences {
		part, err := c.imagePart(ctx, ref)
		if err != nil {
			slog.Warn("スタイル参照画像を読み込めませんでした", "ref", ref, "error", err)
			continue
		}
		content = append(content, part)
	}
	content = append(content, contentPart{Type: contentTypeText, Text: p.Instructions})

	payload := chatRequest{
		Model:      p.Model,
		Messages:   []chatMessage{{Role: roleUser, Content: content}},
		Modalities: []string{modalityImage, modalityText},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	attempts := c.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.opts.RetryDelay); err != nil {
				return nil, err
			}
		}
		data, err := c.attempt(ctx, apiKey, body)
		if err == nil {
			return data, nil
		}
		if IsFatal(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("画像編集が%d回の試行後も失敗しました: %w", attempts, lastErr)
}

// attempt は1回分の API 呼び出しと画像デコードを行うのだ。
func (c *Client) attempt(ctx context.Context, apiKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAPIKeyInvalid
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIがエラーを返しました: status=%d body=%s", resp.StatusCode, truncate(respBody, 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("レスポンスのパースに失敗しました: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("APIがエラーを返しました: %s (code=%d)", parsed.Error.Message, parsed.Error.Code)
	}
	if len(parsed.Choices) == 0 || len(parsed.Choices[0].Message.Images) == 0 {
		return nil, errNoImage
	}

	return c.decodeImageURL(ctx, parsed.Choices[0].Message.Images[0].ImageURL.URL)
}

// decodeImageURL はインライン data URL または外部 URL から画像バイト列を得るのだ。
func (c *Client) decodeImageURL(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		idx := strings.Index(rawURL, ",")
		if idx < 0 {
			return nil, fmt.Errorf("不正な data URL です")
		}
		data, err := base64.StdEncoding.DecodeString(rawURL[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("base64デコードに失敗しました: %w", err)
		}
		return data, nil
	}
	return c.fetcher.FetchBytes(ctx, rawURL)
}

// buildContent は参照画像とプロンプト本文を content 配列に組み立てるのだ。
// 画像パーツが先、テキストが最後という順序は API 仕様上の要請なのだ。
func (c *Client) buildContent(ctx context.Context, p GenerateParams) ([]contentPart, error) {
	var content []contentPart

	if p.ReferenceDir != "" {
		refs, err := c.systemReferences(p.ReferenceDir)
		if err != nil {
			slog.Warn("システム参照画像を読み込めませんでした", "dir", p.ReferenceDir, "error", err)
		}
		for _, url := range refs {
			content = append(content, contentPart{Type: contentTypeImage, ImageURL: &imageRef{URL: url}})
		}
	}

	for _, ref := range p.UserReferences {
		part, err := c.imagePart(ctx, ref)
		if err != nil {
			slog.Warn("ユーザー参照画像を読み込めませんでした", "ref", ref, "error", err)
			continue
		}
		content = append(content, part)
	}

	content = append(content, contentPart{Type: contentTypeText, Text: p.Prompt})
	return content, nil
}

// systemReferences はディレクトリ内の参照画像を列挙順の先頭から上限枚数まで
// 読み込み、data URL のリストとして返すのだ。結果はディレクトリ単位でキャッシュされるのだ。
func (c *Client) systemReferences(dir string) ([]string, error) {
	if cached, found := c.refCache.Get(dir); found {
		return cached.([]string), nil
	}

	entries, err := c.readDir(dir)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		if len(urls) >= c.opts.MaxReferenceImages {
			break
		}
		data, err := c.readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("参照画像の読み込みに失敗しました", "file", entry.Name(), "error", err)
			continue
		}
		urls = append(urls, toDataURL(data, mimeTypeFor(entry.Name())))
	}

	c.refCache.Set(dir, urls, cache.DefaultExpiration)
	return urls, nil
}

// imagePart はローカルパスまたは URL から画像パーツを1つ作るのだ。
func (c *Client) imagePart(ctx context.Context, ref string) (contentPart, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		data, err := c.fetcher.FetchBytes(ctx, ref)
		if err != nil {
			return contentPart{}, err
		}
		return contentPart{Type: contentTypeImage, ImageURL: &imageRef{URL: toDataURL(data, "image/png")}}, nil
	}

	data, err := c.readFile(ref)
	if err != nil {
		return contentPart{}, err
	}
	return contentPart{Type: contentTypeImage, ImageURL: &imageRef{URL: toDataURL(data, mimeTypeFor(ref))}}, nil
}

func toDataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func mimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
