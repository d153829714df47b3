// Package validator は生成済み画像の品質検証を提供するのだ。
// 検証は寸法・アスペクト比・ファイルサイズの3点で行い、
// 失敗しても生成結果そのものは破棄しないのだ（報告のみ）。
package validator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
	"github.com/shouni/go-eduimage-kit/pkg/imgutil"
)

// Validator は画像検証器なのだ。
type Validator struct {
	AspectTolerance float64 // アスペクト比の許容誤差（期待比率に対する相対値）
	MinFileSize     int
	MaxFileSize     int
}

// New は既定の閾値を持つ検証器を生成するのだ。
func New(aspectTolerance float64, minFileSize, maxFileSize int) *Validator {
	return &Validator{
		AspectTolerance: aspectTolerance,
		MinFileSize:     minFileSize,
		MaxFileSize:     maxFileSize,
	}
}

// ValidateImage は画像1枚を期待サイズに対して検証するのだ。
// データが画像としてデコードできない場合は Passed=false とし、Error に理由を残すのだ。
func (v *Validator) ValidateImage(filename string, data []byte, expectedWidth, expectedHeight int) domain.ValidationResult {
	result := domain.ValidationResult{
		Filename:       filename,
		ExpectedWidth:  expectedWidth,
		ExpectedHeight: expectedHeight,
		FileSize:       len(data),
	}

	result.FileSizeValid = len(data) >= v.MinFileSize && len(data) <= v.MaxFileSize

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		result.Error = fmt.Sprintf("画像としてデコードできません: %v", err)
		return result
	}

	result.Width = cfg.Width
	result.Height = cfg.Height
	result.Format = format
	result.Mode = colorMode(cfg)

	diff := imgutil.AspectRatioDiff(cfg.Width, cfg.Height, expectedWidth, expectedHeight)
	result.AspectRatioMatch = diff <= v.AspectTolerance
	result.AspectRatioDifference = fmt.Sprintf("%.2f%%", diff*100)

	result.Passed = result.AspectRatioMatch && result.FileSizeValid
	return result
}

// ValidateBatch は画像データを持つスロットをまとめて検証し、サマリを返すのだ。
// 保存に失敗したスロットでも、データがあれば検証対象に含めるのだ。
// 画像が1枚も無いバッチでも total=0 / success_rate="0.0%" の定義済みサマリを返すのだ。
func (v *Validator) ValidateBatch(images []domain.GeneratedImage, expectedWidth, expectedHeight int) domain.ValidationSummary {
	summary := domain.ValidationSummary{SuccessRate: "0.0%"}

	for _, img := range images {
		if img.Data == nil {
			continue
		}
		result := v.ValidateImage(img.Save.Filename, img.Data, expectedWidth, expectedHeight)
		summary.Results = append(summary.Results, result)
		summary.Total++
		if result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
			slog.Warn("画像が検証基準を満たしませんでした",
				"filename", result.Filename,
				"aspect_ratio_match", result.AspectRatioMatch,
				"file_size_valid", result.FileSizeValid,
				"error", result.Error,
			)
		}
	}

	if summary.Total > 0 {
		summary.SuccessRate = fmt.Sprintf("%.1f%%", float64(summary.Passed)/float64(summary.Total)*100)
	}
	return summary
}

// colorMode はデコード設定からおおまかなカラーモード名を導出するのだ。
func colorMode(cfg image.Config) string {
	switch cfg.ColorModel {
	case color.RGBAModel, color.RGBA64Model:
		return "RGBA"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.YCbCrModel:
		return "RGB"
	default:
		return "RGBA"
	}
}
