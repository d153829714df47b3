package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-eduimage-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// refineCmd は、既存画像に対する微調整（リファイン）を実行するのだ。
var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "既存の画像をAIに微調整させますなのだ。",
	Long: `ベース画像と修正指示を渡して、元のデザインを保ったまま部分的に描き直すのだ。
リファインには高精度モデル（pro）を使うのだよ。`,
	RunE: refineCommand,
}

func init() {
	refineCmd.Flags().StringVar(&opts.BaseImage, "base-image", "", "ベース画像のパスまたはURLなのだ。")
	refineCmd.Flags().StringVar(&opts.Instructions, "instructions", "", "修正指示なのだ。")
}

func refineCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.BaseImage == "" {
		return fmt.Errorf("ベース画像（--base-image）を指定してほしいのだ")
	}
	if opts.Instructions == "" {
		return fmt.Errorf("修正指示（--instructions）を指定してほしいのだ")
	}

	slog.Info("リファインパイプラインを起動するのだ！",
		"base", opts.BaseImage,
		"category", opts.Category,
	)

	if err := pipeline.ExecuteRefine(ctx, opts); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("リファインが完了したのだ！")
	return nil
}
