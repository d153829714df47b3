package generator

import (
	"context"
	"log/slog"
)

// OnResult はバッチ内の1枚分の結果を受け取るコールバックなのだ。
// 成功時は data が非 nil、失敗時は err が非 nil となるのだ。
// ドライランでは両方 nil で呼ばれるのだ。
type OnResult func(index int, data []byte, err error)

// GenerateBatch は複数のスロットを逐次処理するのだ。
//
// スロット間にはリモートのレート制限を避けるための待機を挟むのだ。
// onStart は各スロットの生成呼び出しの直前に同期的に呼ばれるのだ。
// 個々の失敗はコールバックへ報告して続行し、致命的エラー
// （APIキー不備・401）のみが残りのスロットを中断してエラーとして返るのだ。
func (c *Client) GenerateBatch(ctx context.Context, items []GenerateParams, onStart func(index int), onResult OnResult) error {
	for i, p := range items {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		if onStart != nil {
			onStart(i)
		}
		slog.Info("画像を生成します", "slot", i+1, "total", len(items), "model", p.Model)

		data, err := c.GenerateImage(ctx, p)
		if err != nil && IsFatal(err) {
			return err
		}
		if err != nil {
			slog.Error("スロットの生成に失敗しました", "slot", i+1, "error", err)
		}
		if onResult != nil {
			onResult(i, data, err)
		}
	}
	return nil
}

// AspectRatioHint は実寸から OpenRouter に渡す比率ヒントを導出するのだ。
// しきい値は縦横比の区分けとして経験的に定めた固定値なのだ。
func AspectRatioHint(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 1.3:
		return "16:9"
	case ratio > 1.1:
		return "4:3"
	case ratio > 0.8:
		return "1:1"
	case ratio > 0.7:
		return "3:4"
	case ratio > 0.6:
		return "2:3"
	default:
		return "9:16"
	}
}
