package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-eduimage-kit/internal/pipeline"
	"github.com/shouni/go-eduimage-kit/pkg/domain"

	"github.com/spf13/cobra"
)

// generateCmd は、自然言語リクエストから教育用画像のバッチ生成を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに教育用画像を生成させますなのだ。",
	Long: `自然言語のリクエストを解析し、カテゴリに応じたプロンプトを組み立てて画像を生成するのだ。
複数枚を指定すると、スタイルやポーズを変えたバリエーションが出力されるのだよ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.Input == "" {
		return fmt.Errorf("生成内容（--input）を指定してほしいのだ")
	}
	for _, m := range opts.Models {
		switch strings.ToLower(m) {
		case domain.ModelKeyFlash, domain.ModelKeyPro:
		default:
			return fmt.Errorf("不正なモデル指定なのだ: %q (flash / pro のみ指定できます)", m)
		}
	}

	slog.Info("画像生成パイプラインを起動するのだ！",
		"category", opts.Category,
		"input", opts.Input,
		"models", opts.Models,
		"dry_run", opts.DryRun,
	)

	// 2. パイプラインを実行するのだ
	if err := pipeline.ExecuteGenerate(ctx, opts); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
