// Package imgutil は生成画像のアスペクト比補正とサイズ検査を提供するのだ。
package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// Dimensions は画像バイト列の幅・高さ・フォーマット名を返すのだ。
func Dimensions(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("画像ヘッダのデコードに失敗しました: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// AspectRatioDiff は実寸と期待サイズのアスペクト比の相対差分を返すのだ。
// 差分は期待比率に対する割合（|actual - expected| / expected）であり、
// 許容誤差との比較が縦横どちらの向きでも同じ厳しさになるのだ。
func AspectRatioDiff(width, height, expectedWidth, expectedHeight int) float64 {
	if height == 0 || expectedWidth == 0 || expectedHeight == 0 {
		return math.Inf(1)
	}
	actual := float64(width) / float64(height)
	expected := float64(expectedWidth) / float64(expectedHeight)
	return math.Abs(actual-expected) / expected
}

// CorrectAspectRatio は画像を目標サイズへリサイズして PNG バイト列を返すのだ。
//
// 常に全体をリサイズし、切り取り（クロップ）は一切行わないのだ。幾何学的な
// 内容を欠けさせないことを優先し、アスペクト比が異なる場合は歪みを許容するのだ。
// 既に目標サイズちょうどの PNG であれば入力をそのまま返すのだ。
// デコードや再エンコードに失敗した場合は元のバイト列を返すのだ（補正は
// ベストエフォートであり、画像を失うよりは未補正のまま保存する方が良いのだ）。
func CorrectAspectRatio(data []byte, targetWidth, targetHeight int) []byte {
	if targetWidth <= 0 || targetHeight <= 0 {
		return data
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("アスペクト比補正をスキップします（デコード失敗）", "error", err)
		return data
	}

	bounds := src.Bounds()
	if bounds.Dx() == targetWidth && bounds.Dy() == targetHeight && format == "png" {
		return data
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		slog.Warn("アスペクト比補正をスキップします（エンコード失敗）", "error", err)
		return data
	}

	slog.Debug("アスペクト比を補正しました",
		"from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"to", fmt.Sprintf("%dx%d", targetWidth, targetHeight),
	)
	return buf.Bytes()
}
