package domain

import (
	"strings"
	"time"
	"unicode"
)

// Orientation は生成画像の向きの上書き指定です。空文字はカテゴリ既定値を意味します。
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Orientation 上書き時の固定解像度です。バッチ内の全画像に適用されます。
const (
	LandscapeWidth  = 1920
	LandscapeHeight = 1080
	PortraitWidth   = 1060
	PortraitHeight  = 1500
)

// Dimensions は Orientation に対応する解像度を返します。
// 上書き指定がない場合は ok=false を返し、カテゴリ既定値を使うべきです。
func (o Orientation) Dimensions() (width, height int, ok bool) {
	switch o {
	case OrientationLandscape:
		return LandscapeWidth, LandscapeHeight, true
	case OrientationPortrait:
		return PortraitWidth, PortraitHeight, true
	}
	return 0, 0, false
}

// モデル選択肢の識別子です。
const (
	ModelKeyFlash = "flash"
	ModelKeyPro   = "pro"
)

// GenerationRequest は1回の画像生成リクエストです。送信後は不変として扱います。
type GenerationRequest struct {
	Category  Category `json:"category"`
	UserInput string   `json:"user_input"`
	Count     int      `json:"count"`

	YearLevel string `json:"year_level,omitempty"` // 例: "Year 8"
	Age       string `json:"age,omitempty"`        // 例: "middle school"
	Context   string `json:"context,omitempty"`

	// SelectedModels は "flash" / "pro" の集合です。空の場合は flash のみとみなします。
	SelectedModels []string    `json:"selected_models,omitempty"`
	Orientation    Orientation `json:"orientation,omitempty"`
	Style          string      `json:"style,omitempty"` // 明示スタイル指定（"original" は自動選択の意）

	// UserReferenceImages はユーザー提供の参照画像（data URL）の順序付きリストです。
	UserReferenceImages []string `json:"user_reference_images,omitempty"`

	// APIKey はリクエスト単位の明示キーです。環境設定のキーより優先されます。
	APIKey string `json:"-"`
}

// WantsModel は指定モデルが選択集合に含まれるかを判定します。
func (r GenerationRequest) WantsModel(key string) bool {
	for _, m := range r.SelectedModels {
		if m == key {
			return true
		}
	}
	return false
}

// RefineRequest は既存画像1枚のリファイン（再生成）リクエストです。
type RefineRequest struct {
	Category      Category `json:"category"`
	BaseImagePath string   `json:"base_image_path"` // ローカルパスまたは http(s) URL
	Instructions  string   `json:"instructions"`
	APIKey        string   `json:"-"`
}

const maxFilenameInputLen = 30

// BaseFilename は保存用のベースファイル名を組み立てます。
// ユーザー入力は英数とスペース・ハイフン・アンダースコアのみ残して
// サニタイズし、30文字に切り詰めてタイムスタンプを付与します。
func BaseFilename(category Category, userInput string, now time.Time) string {
	var sb strings.Builder
	for _, r := range userInput {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}
	safe := sb.String()
	if runes := []rune(safe); len(runes) > maxFilenameInputLen {
		safe = string(runes[:maxFilenameInputLen])
	}
	return string(category) + "_" + safe + "_" + now.Format("20060102_150405")
}
