package domain

import "time"

// SaveInfo は画像1枚の保存結果サマリです。Index は成果物上では 1 始まりです。
type SaveInfo struct {
	Index     int    `json:"index"`
	Success   bool   `json:"success"`
	Filename  string `json:"filename,omitempty"`
	Filepath  string `json:"filepath,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GeneratedImage はバッチ内の1スロット分の生成記録です。
// 失敗したスロットも Index を保持したまま記録され、欠番にはなりません。
type GeneratedImage struct {
	Index  int      `json:"index"` // 0 始まりのスロット番号
	Model  string   `json:"model"`
	Style  string   `json:"style,omitempty"`
	Prompt string   `json:"prompt,omitempty"`
	Data   []byte   `json:"-"` // 生成失敗時は nil
	Save   SaveInfo `json:"save_info"`
}

// ValidationResult は画像1枚の検証結果です。
type ValidationResult struct {
	Filename              string `json:"filename"`
	Passed                bool   `json:"passed"`
	Width                 int    `json:"width,omitempty"`
	Height                int    `json:"height,omitempty"`
	ExpectedWidth         int    `json:"expected_width,omitempty"`
	ExpectedHeight        int    `json:"expected_height,omitempty"`
	AspectRatioMatch      bool   `json:"aspect_ratio_match"`
	AspectRatioDifference string `json:"aspect_ratio_difference,omitempty"` // 例: "1.25%"
	FileSize              int    `json:"file_size,omitempty"`
	FileSizeValid         bool   `json:"file_size_valid"`
	Format                string `json:"format,omitempty"`
	Mode                  string `json:"mode,omitempty"`
	Error                 string `json:"error,omitempty"`
}

// ValidationSummary はバッチ全体の検証サマリです。
// 画像が0枚のバッチでも total=0, passed=0, failed=0 の定義済み値を持ちます。
type ValidationSummary struct {
	Total       int                `json:"total"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	SuccessRate string             `json:"success_rate"` // パーセント表記の文字列
	Results     []ValidationResult `json:"results,omitempty"`
}

// BatchResult は1リクエスト分の最終成果レコードです。
// リクエスト完了時に一度だけ組み立てられ、セッション成果物として永続化されます。
type BatchResult struct {
	Success        bool              `json:"success"` // 1枚以上成功していれば true
	Category       Category          `json:"category"`
	UserInput      string            `json:"user_input"`
	Prompt         string            `json:"prompt,omitempty"`
	TotalRequested int               `json:"total_requested"`
	TotalGenerated int               `json:"total_generated"`
	Images         []SaveInfo        `json:"images"`
	Validation     ValidationSummary `json:"validation"`
	SessionID      string            `json:"session_id"`
	Timestamp      time.Time         `json:"timestamp"`
	ModelsUsed     []string          `json:"models_used,omitempty"`
	Error          string            `json:"error,omitempty"`
}
