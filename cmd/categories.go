package cmd

import (
	"github.com/shouni/go-eduimage-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// categoriesCmd は、利用可能なカテゴリとスタイルの一覧を表示するのだ。
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "利用可能な画像カテゴリの一覧を表示しますなのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		return pipeline.ExecuteCategories()
	},
}
