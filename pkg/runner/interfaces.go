package runner

import (
	"context"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
	"github.com/shouni/go-eduimage-kit/pkg/generator"
	"github.com/shouni/go-eduimage-kit/pkg/prompts"
)

// ConfigProvider はカテゴリ設定の参照インターフェースなのだ。
type ConfigProvider interface {
	Category(name domain.Category) (domain.CategoryConfig, error)
	ReferenceImageDir(name domain.Category) (string, error)
}

// PromptBuilder はプロンプト組み立てのインターフェースなのだ。
// prompts.Composer がこれを満たすのだ。
type PromptBuilder interface {
	Build(p prompts.BuildParams) (string, error)
}

// StyleSelector はスタイル割り当てのインターフェースなのだ。
// prompts.Selector がこれを満たすのだ。
type StyleSelector interface {
	SelectStyles(category domain.Category, count int, userInput, explicitStyle string, available []domain.StyleTemplate) []string
}

// ImageClient はリモート生成クライアントのインターフェースなのだ。
// generator.Client がこれを満たすのだ。
type ImageClient interface {
	GenerateBatch(ctx context.Context, items []generator.GenerateParams, onStart func(index int), onResult generator.OnResult) error
	RefineImage(ctx context.Context, p generator.RefineParams) ([]byte, error)
}

// ImageStore は成果物の保存先インターフェースなのだ。
// publisher.Store がこれを満たすのだ。
type ImageStore interface {
	SaveImage(ctx context.Context, data []byte, baseFilename string, index int) domain.SaveInfo
	SaveSessionMetadata(ctx context.Context, result domain.BatchResult) error
	LoadImage(ctx context.Context, path string) ([]byte, error)
}

// BatchValidator は生成結果の検証インターフェースなのだ。
// validator.Validator がこれを満たすのだ。
type BatchValidator interface {
	ValidateBatch(images []domain.GeneratedImage, expectedWidth, expectedHeight int) domain.ValidationSummary
}

// ProgressFunc はフェーズ遷移ごとに同期的に呼ばれる進捗通知なのだ。
// current は単調増加し、各生成呼び出しの開始前に発火するのだ。
type ProgressFunc func(current, total int, status string)

// ImageFunc は画像1スロットの結果が確定するたびに同期的に呼ばれる通知なのだ。
// 成否にかかわらずスロットごとに1回、保存情報が埋まった状態で発火するのだ。
type ImageFunc func(img domain.GeneratedImage)
