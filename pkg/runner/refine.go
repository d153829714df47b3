package runner

import (
	"context"
	"log/slog"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
	"github.com/shouni/go-eduimage-kit/pkg/generator"
)

// refineProgressTotal はリファイン処理のフェーズ数なのだ
// （ベース画像の読み込み → 生成 → 保存）。
const refineProgressTotal = 3

// Refine は既存画像1枚に編集指示を適用して保存するのだ。
// 致命的エラーの扱いはバッチ生成と同一なのだ。
func (r *Runner) Refine(ctx context.Context, req domain.RefineRequest, progress ProgressFunc) (domain.SaveInfo, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}

	progress(0, refineProgressTotal, "ベース画像を読み込んでいます")
	base, err := r.store.LoadImage(ctx, req.BaseImagePath)
	if err != nil {
		return domain.SaveInfo{Error: err.Error()}, err
	}

	progress(1, refineProgressTotal, "画像を編集しています")
	data, err := r.client.RefineImage(ctx, generator.RefineParams{
		BaseImage:    base,
		Instructions: req.Instructions,
		Model:        r.opts.ModelPro,
		APIKey:       req.APIKey,
	})
	if err != nil {
		slog.Error("画像の編集に失敗しました", "base", req.BaseImagePath, "error", err)
		return domain.SaveInfo{Error: err.Error()}, err
	}
	if data == nil {
		// ドライランなのだ
		progress(refineProgressTotal, refineProgressTotal, "完了しました")
		return domain.SaveInfo{Error: "ドライランのため画像は生成されていません"}, nil
	}

	progress(2, refineProgressTotal, "編集結果を保存しています")
	baseFilename := domain.BaseFilename(req.Category, "refined", r.now())
	info := r.store.SaveImage(ctx, data, baseFilename, 0)

	if cat, catErr := r.config.Category(req.Category); catErr == nil {
		summary := r.validator.ValidateBatch([]domain.GeneratedImage{
			{Model: r.opts.ModelPro, Data: data, Save: info},
		}, cat.Width, cat.Height)
		slog.Info("編集結果を検証しました",
			"passed", summary.Passed,
			"total", summary.Total,
		)
	}

	progress(refineProgressTotal, refineProgressTotal, "完了しました")
	return info, nil
}
