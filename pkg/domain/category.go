package domain

import (
	"errors"
	"fmt"
)

// Category は画像の用途区分を表す識別子です。
type Category string

const (
	// CategorySubtopicCover は数学サブトピックのカバー画像です。
	CategorySubtopicCover Category = "subtopic_cover"
	// CategoryTuteroAI はコンテキストシーン内の Tutero AI キャラクター画像です。
	CategoryTuteroAI Category = "tutero_ai"
	// CategoryClassroomActivity は教室での学習活動シーン画像です。
	CategoryClassroomActivity Category = "classroom_activity"
	// CategoryContextIntroduction は実世界コンテキストの導入画像です。
	CategoryContextIntroduction Category = "context_introduction"
)

// ErrUnknownCategory は未定義のカテゴリが指定されたことを示します。
var ErrUnknownCategory = errors.New("unknown category")

// AllCategories は定義済みカテゴリの一覧を宣言順で返します。
func AllCategories() []Category {
	return []Category{
		CategorySubtopicCover,
		CategoryTuteroAI,
		CategoryClassroomActivity,
		CategoryContextIntroduction,
	}
}

// Valid は定義済みカテゴリかどうかを判定します。
func (c Category) Valid() bool {
	switch c {
	case CategorySubtopicCover, CategoryTuteroAI, CategoryClassroomActivity, CategoryContextIntroduction:
		return true
	}
	return false
}

// ParseCategory は文字列を検証付きで Category に変換します。
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// StyleTemplate は subtopic_cover 用のビジュアルスタイル定義です。
// ID で選択され、1枚の生成画像に対して有効になるのは最大1つです。
type StyleTemplate struct {
	ID             string `yaml:"id" json:"id"`
	PromptTemplate string `yaml:"prompt_template" json:"prompt_template"`
}

// CategoryConfig はカテゴリごとの生成仕様です。
// 設定ファイルからロードされ、リクエストの実行中は読み取り専用です。
type CategoryConfig struct {
	Name         string          `yaml:"name" json:"name"`
	Description  string          `yaml:"description" json:"description"`
	AspectRatio  string          `yaml:"aspect_ratio" json:"aspect_ratio"` // "W:H" 形式
	Width        int             `yaml:"width" json:"width"`
	Height       int             `yaml:"height" json:"height"`
	ReferenceDir string          `yaml:"reference_dir" json:"reference_dir"`
	Styles       []StyleTemplate `yaml:"styles,omitempty" json:"styles,omitempty"`
}

// StyleByID は定義済みスタイルを ID で検索します。見つからない場合は nil を返します。
func (c CategoryConfig) StyleByID(id string) *StyleTemplate {
	for i := range c.Styles {
		if c.Styles[i].ID == id {
			return &c.Styles[i]
		}
	}
	return nil
}

// StyleIDs は利用可能なスタイル ID を定義順で返します。
func (c CategoryConfig) StyleIDs() []string {
	ids := make([]string, 0, len(c.Styles))
	for _, s := range c.Styles {
		ids = append(ids, s.ID)
	}
	return ids
}
