package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-eduimage-kit/internal/builder"
	"github.com/shouni/go-eduimage-kit/internal/config"
	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// setupAppContext は、設定の読み込みと CLI フラグの反映、
// アプリケーションコンテキストの構築をまとめて行うのだ。
func setupAppContext(ctx context.Context, opts config.GenerateOptions) (*builder.AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	cfg.Options = opts
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.DryRun {
		cfg.DryRun = true
	}

	appCtx, err := builder.NewAppContext(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("アプリケーションコンテキストの構築に失敗しました: %w", err)
	}
	return appCtx, nil
}

// buildGenerationRequest は CLI フラグをドメインのリクエストに変換するのだ。
func buildGenerationRequest(opts config.GenerateOptions, defaultCount int) (domain.GenerationRequest, error) {
	orientation := domain.Orientation(opts.Orientation)
	if opts.Orientation != "" {
		if _, _, ok := orientation.Dimensions(); !ok {
			return domain.GenerationRequest{}, fmt.Errorf("不正な orientation です: %q (landscape / portrait のみ指定できます)", opts.Orientation)
		}
	}

	count := opts.Count
	if count <= 0 {
		count = defaultCount
	}

	return domain.GenerationRequest{
		Category:            domain.Category(opts.Category),
		UserInput:           opts.Input,
		Count:               count,
		YearLevel:           opts.YearLevel,
		Age:                 opts.Age,
		Context:             opts.Context,
		SelectedModels:      opts.Models,
		Orientation:         orientation,
		Style:               opts.Style,
		UserReferenceImages: opts.ReferenceImages,
	}, nil
}

// logProgress は進捗コールバックを構造化ログとして出力するのだ。
func logProgress(current, total int, status string) {
	slog.Info("進捗", "current", current, "total", total, "status", status)
}

// ExecuteGenerate は画像バッチ生成のパイプラインを実行するのだ。
// 一部の画像が失敗しても、1枚でも成功すればエラーにはしないのだ。
func ExecuteGenerate(ctx context.Context, opts config.GenerateOptions) error {
	appCtx, err := setupAppContext(ctx, opts)
	if err != nil {
		return err
	}

	req, err := buildGenerationRequest(opts, appCtx.Config.ImagesPerPrompt)
	if err != nil {
		return err
	}

	slog.Info("画像生成を開始します",
		"category", req.Category,
		"input", req.UserInput,
		"count", req.Count,
	)

	result, err := appCtx.Runner.Generate(ctx, req, logProgress, logImage)
	if err != nil {
		return fmt.Errorf("バッチ生成が中断されました: %w", err)
	}

	return reportGenerateResult(result, appCtx.Config.IsDryRun())
}

// logImage はスロットごとの結果確定を逐次ログに流すのだ。
func logImage(img domain.GeneratedImage) {
	if img.Save.Success {
		slog.Info("保存完了", "index", img.Index+1, "file", img.Save.Filepath, "model", img.Model, "style", img.Style)
	} else {
		slog.Warn("生成失敗", "index", img.Index+1, "error", img.Save.Error)
	}
}

// reportGenerateResult はバッチ結果のサマリを出力して終了可否を決めるのだ。
// ドライランでは画像が1枚も無いのが正常のため、エラーにはしないのだ。
func reportGenerateResult(result domain.BatchResult, dryRun bool) error {
	if dryRun {
		slog.Info("ドライランが完了しました（画像は生成されていません）",
			"session", result.SessionID,
			"requested", result.TotalRequested,
		)
		if result.Prompt != "" {
			fmt.Println(result.Prompt)
		}
		return nil
	}

	if !result.Success {
		return fmt.Errorf("画像を1枚も生成できませんでした (セッション: %s)", result.SessionID)
	}

	slog.Info("バッチ生成が完了しました",
		"session", result.SessionID,
		"generated", result.TotalGenerated,
		"requested", result.TotalRequested,
		"models", result.ModelsUsed,
	)
	if result.Validation.Total > 0 {
		slog.Info("検証結果",
			"passed", result.Validation.Passed,
			"total", result.Validation.Total,
			"success_rate", result.Validation.SuccessRate,
		)
	}
	return nil
}

// ExecuteRefine は既存画像のリファインを実行するのだ。
func ExecuteRefine(ctx context.Context, opts config.GenerateOptions) error {
	appCtx, err := setupAppContext(ctx, opts)
	if err != nil {
		return err
	}

	req := domain.RefineRequest{
		Category:      domain.Category(opts.Category),
		BaseImagePath: opts.BaseImage,
		Instructions:  opts.Instructions,
	}

	slog.Info("画像リファインを開始します", "base", req.BaseImagePath, "category", req.Category)

	info, err := appCtx.Runner.Refine(ctx, req, logProgress)
	if err != nil {
		return fmt.Errorf("リファインに失敗しました: %w", err)
	}
	if !info.Success {
		return fmt.Errorf("リファイン画像の保存に失敗しました: %s", info.Error)
	}

	slog.Info("リファインが完了しました", "file", info.Filepath, "size", info.SizeBytes)
	return nil
}

// ExecuteCategories は利用可能なカテゴリとスタイルの一覧を出力するのだ。
func ExecuteCategories() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	for name, cat := range cfg.Categories() {
		fmt.Printf("%s: %s (%s, %dx%d)\n", name, cat.Description, cat.AspectRatio, cat.Width, cat.Height)
		for _, style := range cat.Styles {
			fmt.Printf("  - %s\n", style.ID)
		}
	}
	return nil
}
