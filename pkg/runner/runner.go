// Package runner はリクエスト1件分のバッチ生成を統括するオーケストレータなのだ。
// プロンプト構築 → 逐次生成・保存 → 検証 → 成果記録 という状態遷移を駆動するのだ。
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
	"github.com/shouni/go-eduimage-kit/pkg/generator"
	"github.com/shouni/go-eduimage-kit/pkg/prompts"
)

// technicalSubtopicKeywords は subtopic_cover でシステム参照画像の添付を
// 無効化するキーワードなのだ。キャラクターの参照画像が精密な数学図を
// 視覚的に汚染することが分かっているための措置なのだ。
var technicalSubtopicKeywords = []string{
	"trigonometry", "calculus", "statistics", "geometry", "fractions",
	"probability", "algebra", "equation", "graph", "theorem", "logarithm",
}

// Options はオーケストレータの動作設定なのだ。
type Options struct {
	ModelFlash string
	ModelPro   string
}

// Runner はバッチ生成のオーケストレータなのだ。
// 1リクエストの処理は単一ワーカー上で逐次実行されるのだ。
type Runner struct {
	config    ConfigProvider
	composer  PromptBuilder
	selector  StyleSelector
	client    ImageClient
	store     ImageStore
	validator BatchValidator
	opts      Options

	// テストから差し替えるためのシームなのだ
	now   func() time.Time
	newID func() string
}

// New はオーケストレータを生成するのだ。
func New(config ConfigProvider, composer PromptBuilder, selector StyleSelector, client ImageClient, store ImageStore, validator BatchValidator, opts Options) *Runner {
	return &Runner{
		config:    config,
		composer:  composer,
		selector:  selector,
		client:    client,
		store:     store,
		validator: validator,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Generate はリクエスト1件分のバッチを実行して結果を返すのだ。
// onImage を渡すと、スロットごとの結果確定を逐次受け取れるのだ。
//
// 個々の画像の失敗はバッチを止めず、結果レコードに失敗として残るのだ。
// APIキー不備などの致命的エラーのみが残りの処理を中断し、エラーとして返るのだ。
// その場合でも、それまでの経過を記録した BatchResult を併せて返すのだ。
func (r *Runner) Generate(ctx context.Context, req domain.GenerationRequest, progress ProgressFunc, onImage ImageFunc) (domain.BatchResult, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}
	if onImage == nil {
		onImage = func(domain.GeneratedImage) {}
	}

	result := domain.BatchResult{
		Category:       req.Category,
		UserInput:      req.UserInput,
		TotalRequested: req.Count,
		SessionID:      r.newID(),
		Timestamp:      r.now(),
	}

	// 進捗の総数は 生成枚数 + プロンプト構築 + 検証保存 の2フェーズ分なのだ
	total := req.Count + 2
	progress(0, total, "プロンプトを構築しています")

	cat, err := r.config.Category(req.Category)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	width, height := cat.Width, cat.Height
	if w, h, ok := req.Orientation.Dimensions(); ok {
		width, height = w, h
	}

	models := r.assignModels(req)
	result.ModelsUsed = uniqueStrings(models)

	styles := r.selector.SelectStyles(req.Category, req.Count, req.UserInput, req.Style, cat.Styles)

	referenceDir := r.resolveReferenceDir(req, cat)
	baseFilename := domain.BaseFilename(req.Category, req.UserInput, r.now())

	slog.Info("バッチ生成を開始します",
		"session_id", result.SessionID,
		"category", req.Category,
		"count", req.Count,
		"models", result.ModelsUsed,
		"size", fmt.Sprintf("%dx%d", width, height),
	)

	// スロットごとのプロンプトを先に組み立てるのだ。
	// 構築に失敗したスロットは failed として記録し、残りは続行するのだ。
	images := make([]domain.GeneratedImage, req.Count)
	var items []generator.GenerateParams
	var slotOf []int
	for i := 0; i < req.Count; i++ {
		images[i] = domain.GeneratedImage{
			Index: i,
			Model: models[i],
			Style: styles[i],
		}

		prompt, err := r.composer.Build(prompts.BuildParams{
			Category:        req.Category,
			UserInput:       req.UserInput,
			Style:           styles[i],
			YearLevel:       req.YearLevel,
			Age:             req.Age,
			Context:         req.Context,
			Width:           width,
			Height:          height,
			VariationIndex:  i,
			TotalVariations: req.Count,
		})
		if err != nil {
			images[i].Save = domain.SaveInfo{
				Index: i + 1,
				Error: fmt.Sprintf("プロンプトの構築に失敗しました: %v", err),
			}
			continue
		}

		images[i].Prompt = prompt
		if result.Prompt == "" {
			result.Prompt = prompt
		}

		items = append(items, generator.GenerateParams{
			Prompt:         prompt,
			Model:          models[i],
			AspectRatio:    generator.AspectRatioHint(width, height),
			Width:          width,
			Height:         height,
			ReferenceDir:   referenceDir,
			UserReferences: req.UserReferenceImages,
			APIKey:         req.APIKey,
		})
		slotOf = append(slotOf, i)
	}

	batchErr := r.client.GenerateBatch(ctx, items,
		func(index int) {
			slot := slotOf[index]
			progress(1+slot, total, fmt.Sprintf("画像 %d/%d を生成しています", slot+1, req.Count))
		},
		func(index int, data []byte, err error) {
			slot := slotOf[index]
			switch {
			case err != nil:
				images[slot].Save = domain.SaveInfo{Index: slot + 1, Error: err.Error()}
			case data == nil:
				// ドライランでは保存する画像が無いのだ
				images[slot].Save = domain.SaveInfo{Index: slot + 1, Error: "ドライランのため画像は生成されていません"}
			default:
				images[slot].Data = data
				images[slot].Save = r.store.SaveImage(ctx, data, baseFilename, slot)
			}
			onImage(images[slot])
		},
	)

	for _, img := range images {
		result.Images = append(result.Images, img.Save)
		if img.Save.Success && img.Data != nil {
			result.TotalGenerated++
		}
	}
	result.Success = result.TotalGenerated > 0

	if batchErr != nil {
		result.Error = batchErr.Error()
		slog.Error("バッチ生成が中断されました", "session_id", result.SessionID, "error", batchErr)
		return result, batchErr
	}

	progress(req.Count+1, total, "生成結果を検証しています")
	result.Validation = r.validator.ValidateBatch(images, width, height)

	if err := r.store.SaveSessionMetadata(ctx, result); err != nil {
		slog.Warn("セッションメタデータの保存に失敗しました", "session_id", result.SessionID, "error", err)
	}

	progress(total, total, "完了しました")
	slog.Info("バッチ生成が完了しました",
		"session_id", result.SessionID,
		"generated", result.TotalGenerated,
		"requested", result.TotalRequested,
		"validation_passed", result.Validation.Passed,
	)
	return result, nil
}

// assignModels はスロットごとのモデル割り当てを解決するのだ。
// flash と pro の両方が選択された場合のみ偶数/奇数で交互に割り当て、
// pro のみなら全スロット pro、それ以外（既定含む）は全スロット flash なのだ。
func (r *Runner) assignModels(req domain.GenerationRequest) []string {
	wantsFlash := req.WantsModel(domain.ModelKeyFlash)
	wantsPro := req.WantsModel(domain.ModelKeyPro)

	models := make([]string, req.Count)
	for i := range models {
		switch {
		case wantsFlash && wantsPro:
			if i%2 == 0 {
				models[i] = r.opts.ModelFlash
			} else {
				models[i] = r.opts.ModelPro
			}
		case wantsPro:
			models[i] = r.opts.ModelPro
		default:
			models[i] = r.opts.ModelFlash
		}
	}
	return models
}

// resolveReferenceDir はシステム参照画像ディレクトリを解決するのだ。
// subtopic_cover の技術系サブトピックでは参照画像を添付しないのだ。
func (r *Runner) resolveReferenceDir(req domain.GenerationRequest, cat domain.CategoryConfig) string {
	if cat.ReferenceDir == "" {
		return ""
	}
	if req.Category == domain.CategorySubtopicCover && isTechnicalSubtopic(req.UserInput) {
		slog.Debug("技術系サブトピックのため参照画像を無効化します", "user_input", req.UserInput)
		return ""
	}
	dir, err := r.config.ReferenceImageDir(req.Category)
	if err != nil {
		return ""
	}
	return dir
}

func isTechnicalSubtopic(userInput string) bool {
	lower := strings.ToLower(userInput)
	for _, kw := range technicalSubtopicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
