package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	t.Run("定義済みカテゴリは正しくパースできるのだ", func(t *testing.T) {
		for _, c := range AllCategories() {
			got, err := ParseCategory(string(c))
			if err != nil {
				t.Fatalf("パース失敗なのだ: %v", err)
			}
			if got != c {
				t.Errorf("期待 %q, 実際 %q", c, got)
			}
		}
	})

	t.Run("未知のカテゴリはエラーになるのだ", func(t *testing.T) {
		if _, err := ParseCategory("poster"); err == nil {
			t.Error("未知カテゴリでエラーが返らないのだ")
		}
	})
}

func TestOrientation_Dimensions(t *testing.T) {
	if w, h, ok := OrientationLandscape.Dimensions(); !ok || w != 1920 || h != 1080 {
		t.Errorf("landscape の解像度が想定と違うのだ: %dx%d", w, h)
	}
	if w, h, ok := OrientationPortrait.Dimensions(); !ok || w != 1060 || h != 1500 {
		t.Errorf("portrait の解像度が想定と違うのだ: %dx%d", w, h)
	}
	if _, _, ok := Orientation("").Dimensions(); ok {
		t.Error("未指定の向きで上書きが有効になってはいけないのだ")
	}
}

func TestBaseFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	t.Run("記号を除去しスペースをアンダースコアにするのだ", func(t *testing.T) {
		got := BaseFilename(CategorySubtopicCover, "Multiplication 423 x 24!", now)
		want := "subtopic_cover_Multiplication_423_x_24_20260314_150926"
		if got != want {
			t.Errorf("期待 %q, 実際 %q", want, got)
		}
	})

	t.Run("長い入力は30文字に切り詰めるのだ", func(t *testing.T) {
		long := "Simultaneous Linear Equations With Three Unknowns"
		got := BaseFilename(CategorySubtopicCover, long, now)
		// カテゴリ接頭辞とタイムスタンプを除いた中間部が30文字であること
		middle := got[len("subtopic_cover_") : len(got)-len("_20260314_150926")]
		if len([]rune(middle)) != 30 {
			t.Errorf("中間部が30文字ではないのだ: %q (%d)", middle, len([]rune(middle)))
		}
	})
}

func TestCategoryConfig_StyleByID(t *testing.T) {
	cfg := CategoryConfig{
		Styles: []StyleTemplate{
			{ID: "watercolor", PromptTemplate: "soft washes"},
			{ID: "glossy_3d", PromptTemplate: "glass render"},
		},
	}

	if s := cfg.StyleByID("glossy_3d"); s == nil || s.PromptTemplate != "glass render" {
		t.Error("ID検索でスタイルが取得できないのだ")
	}
	if s := cfg.StyleByID("missing"); s != nil {
		t.Error("未定義IDで nil 以外が返ったのだ")
	}
	if ids := cfg.StyleIDs(); len(ids) != 2 || ids[0] != "watercolor" {
		t.Errorf("StyleIDs の順序が定義順ではないのだ: %v", ids)
	}
}

func TestBatchResult_JSON(t *testing.T) {
	t.Run("セッション成果物の形式を維持するのだ", func(t *testing.T) {
		res := BatchResult{
			Success:        true,
			Category:       CategorySubtopicCover,
			UserInput:      "Fractions",
			TotalRequested: 2,
			TotalGenerated: 1,
			Images: []SaveInfo{
				{Index: 1, Success: true, Filename: "a.png", SizeBytes: 2048},
				{Index: 2, Success: false, Error: "Generation failed"},
			},
			Validation: ValidationSummary{Total: 1, Passed: 1, SuccessRate: "100.0%"},
			SessionID:  "20260314_150926",
			Timestamp:  time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		}

		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("Marshal失敗なのだ: %v", err)
		}

		var decoded BatchResult
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal失敗なのだ: %v", err)
		}
		if decoded.TotalGenerated != 1 || len(decoded.Images) != 2 {
			t.Errorf("変換前後でデータが一致しないのだ: %+v", decoded)
		}
		if decoded.Images[1].Success || decoded.Images[1].Error == "" {
			t.Error("失敗スロットの記録が落ちているのだ")
		}
	})
}
