package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-eduimage-kit/internal/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は CLI フラグの値を集約する実行時パラメータなのだ。
var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成リクエスト関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Category, "category", "c", string(config.DefaultCategory), "画像カテゴリ（categories コマンドで一覧を確認できるのだ）。")
	rootCmd.PersistentFlags().StringVarP(&opts.Input, "input", "i", "", "生成したい内容の自然言語リクエストなのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.Count, "count", "n", 0, "生成する画像の枚数（0 なら既定値を使うのだ）。")
	rootCmd.PersistentFlags().StringVar(&opts.YearLevel, "year-level", "", "対象学年（例: 'Year 8'）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Age, "age", "", "登場人物の年齢層（例: 'middle school'）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Context, "context", "", "追加の文脈説明なのだ。")

	// --- モデル・スタイル設定 ---
	rootCmd.PersistentFlags().StringSliceVar(&opts.Models, "models", nil, "使用するモデル（flash / pro、カンマ区切りで両方指定できるのだ）。")
	rootCmd.PersistentFlags().StringVar(&opts.Orientation, "orientation", "", "向きの上書き（landscape / portrait）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Style, "style", "s", "", "明示スタイルID（未指定なら自動選択なのだ）。")

	// --- 参照画像・出力設定 ---
	rootCmd.PersistentFlags().StringSliceVar(&opts.ReferenceImages, "reference-image", nil, "ユーザー参照画像のパスまたはURLなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "保存先ディレクトリ（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "API呼び出しを行わずプロンプト構築のみ実行するのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// 一覧表示とドライランはAPIキー無しで動かせるのだ
	if cmd.Name() == categoriesCmd.Name() || opts.DryRun || isDryRunEnv() {
		return nil
	}
	if os.Getenv("OPENROUTER_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 OPENROUTER_API_KEY が設定されていません。OpenRouter APIの利用には必須なのだ")
	}
	return nil
}

func isDryRunEnv() bool {
	switch strings.ToLower(os.Getenv("DRY_RUN")) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ap-eduimage-go",
		addAppFlags,
		preRunAppE,
		generateCmd,
		refineCmd,
		categoriesCmd,
	)
}
