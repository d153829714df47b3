package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// categoriesFile は image_categories.yaml のトップレベル構造なのだ。
type categoriesFile struct {
	Categories map[string]domain.CategoryConfig `yaml:"categories"`
}

// LoadCategories は YAML ファイルからカテゴリ定義を読み込むのだ。
// マップのキーがカテゴリ名となるため、各エントリの Name フィールドにキーを補完するのだ。
func LoadCategories(path string) (map[string]domain.CategoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ定義ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return ParseCategories(data)
}

// ParseCategories は YAML バイト列からカテゴリ定義をパースするのだ。
func ParseCategories(data []byte) (map[string]domain.CategoryConfig, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("カテゴリ定義のパースに失敗しました: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("カテゴリ定義が空です")
	}

	for name, cat := range file.Categories {
		cat.Name = name
		if cat.Width <= 0 || cat.Height <= 0 {
			return nil, fmt.Errorf("カテゴリ %q の画像サイズが不正です: %dx%d", name, cat.Width, cat.Height)
		}
		file.Categories[name] = cat
	}

	return file.Categories, nil
}
