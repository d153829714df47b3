package prompts

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// StyleOriginal は「自動選択に任せる」ことを示すセンチネル値なのだ。
const StyleOriginal = "original"

// DefaultYearLevel は入力から学年が読み取れない場合のデフォルトなのだ。
const DefaultYearLevel = 8

// styleKeywordRule はユーザー入力中のスタイル指示キーワードの対応表なのだ。
// 固定順で評価され、最初にマッチしたものが全スロットに適用されるのだ。
type styleKeywordRule struct {
	keywords []string
	styleID  string
}

var styleKeywordRules = []styleKeywordRule{
	{[]string{"chalk"}, "hand_drawn_chalk"},
	{[]string{"watercolor", "watercolour"}, "watercolor"},
	{[]string{"glossy", "glass"}, "glossy_3d"},
	{[]string{"holographic", "rainbow"}, "holographic"},
	{[]string{"neon"}, "neon_glow"},
	{[]string{"crayon"}, "crayon_sketch"},
	{[]string{"paper craft", "papercraft"}, "paper_craft"},
	{[]string{"isometric"}, "isometric_3d"},
}

// topicStylePool はトピックキーワード群 → 推奨スタイルの対応なのだ。
// マッチした場合は学年帯プールを完全に置き換えるのだ。
type topicStylePool struct {
	keywords []string
	styles   []string
}

var topicStylePools = []topicStylePool{
	// 幾何系: 立体感と構造を見せるスタイルが合うのだ
	{
		keywords: []string{"geometry", "angle", "triangle", "shape", "area", "volume", "symmetry"},
		styles:   []string{"isometric_3d", "paper_craft", "minimal_flat_3d"},
	},
	// 代数系: 記号的・黒板的なスタイルが合うのだ
	{
		keywords: []string{"algebra", "equation", "expression", "variable", "linear", "quadratic"},
		styles:   []string{"hand_drawn_chalk", "minimal_flat_3d", "neon_glow"},
	},
	// データ系: 整った立体グラフ表現が合うのだ
	{
		keywords: []string{"data", "statistic", "probability", "graph", "chart"},
		styles:   []string{"minimal_flat_3d", "isometric_3d", "glossy_3d"},
	},
	// 抽象系: 雰囲気のあるスタイルで概念を見せるのだ
	{
		keywords: []string{"sequence", "pattern", "logic", "infinity", "series"},
		styles:   []string{"holographic", "neon_glow", "watercolor"},
	},
}

// 学年帯ごとのベーススタイルプールなのだ
var (
	beginnerStyles = []string{"crayon_sketch", "paper_craft", "watercolor", "hand_drawn_chalk"}
	balancedStyles = []string{"minimal_flat_3d", "watercolor", "glossy_3d", "isometric_3d", "paper_craft"}
	advancedStyles = []string{"minimal_flat_3d", "isometric_3d", "neon_glow", "holographic"}
)

var yearLevelPattern = regexp.MustCompile(`(?i)year\s+(\d+)`)

// Selector は subtopic_cover 向けのスタイル選択器なのだ。
// 乱数源を注入できるため、テストではシード固定で決定的に検証できるのだ。
type Selector struct {
	rng *rand.Rand
}

// NewSelector はスタイル選択器を生成するのだ。rng が nil の場合は共有の乱数源を使うのだ。
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

func (s *Selector) intn(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

// SelectStyles はバッチの各スロットに適用するスタイル ID のリストを返すのだ。
//
// subtopic_cover 以外のカテゴリではスタイルの概念が無いため、空文字 count 個を返すのだ。
// 明示スタイルが "original" 以外なら全スロット同一、キーワード指示があれば同じく
// 全スロット同一、どちらも無ければ学年帯とトピックからプールを選んで抽選するのだ。
func (s *Selector) SelectStyles(category domain.Category, count int, userInput, explicitStyle string, available []domain.StyleTemplate) []string {
	result := make([]string, count)

	if category != domain.CategorySubtopicCover || len(available) == 0 {
		return result
	}

	availableIDs := make([]string, 0, len(available))
	availableSet := make(map[string]bool, len(available))
	for _, st := range available {
		availableIDs = append(availableIDs, st.ID)
		availableSet[st.ID] = true
	}

	// 明示指定が最優先なのだ
	if explicitStyle != "" && explicitStyle != StyleOriginal {
		for i := range result {
			result[i] = explicitStyle
		}
		return result
	}

	// 入力中のスタイル指示キーワードが次点なのだ
	lower := strings.ToLower(userInput)
	for _, rule := range styleKeywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) && availableSet[rule.styleID] {
				for i := range result {
					result[i] = rule.styleID
				}
				return result
			}
		}
	}

	// トピック・学年に基づく自動選択なのだ
	pool := s.stylePool(lower, availableSet)
	if len(pool) == 0 {
		pool = availableIDs
	}

	if len(pool) >= count {
		// プールが十分大きければ重複なしで引くのだ
		shuffled := make([]string, len(pool))
		copy(shuffled, pool)
		for i := len(shuffled) - 1; i > 0; i-- {
			j := s.intn(i + 1)
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		}
		copy(result, shuffled[:count])
		return result
	}

	// プール全体を使い切り、残りは全スタイルから重複ありで埋めるのだ
	copy(result, pool)
	for i := len(pool); i < count; i++ {
		result[i] = availableIDs[s.intn(len(availableIDs))]
	}
	return result
}

// stylePool は学年帯プールを選び、トピックプールがあればそれで上書きし、
// 利用可能なスタイルとの積集合を返すのだ。
func (s *Selector) stylePool(lowerInput string, availableSet map[string]bool) []string {
	pool := poolForYear(extractYearLevel(lowerInput))

	for _, tp := range topicStylePools {
		for _, kw := range tp.keywords {
			if strings.Contains(lowerInput, kw) {
				pool = tp.styles
				goto intersect
			}
		}
	}

intersect:
	filtered := make([]string, 0, len(pool))
	for _, id := range pool {
		if availableSet[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

func poolForYear(year int) []string {
	switch {
	case year <= 6:
		return beginnerStyles
	case year <= 9:
		return balancedStyles
	default:
		return advancedStyles
	}
}

// extractYearLevel は "year 10" のような表記から学年を読み取るのだ。
func extractYearLevel(lowerInput string) int {
	m := yearLevelPattern.FindStringSubmatch(lowerInput)
	if m == nil {
		return DefaultYearLevel
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultYearLevel
	}
	return year
}
