package prompts

import "strings"

// Topic は subtopic 文字列から導出される数学トピック分類なのだ。
type Topic string

const (
	TopicAlgebra      Topic = "algebra"
	TopicLogarithm    Topic = "logarithm"
	TopicTrigonometry Topic = "trigonometry"
	TopicCalculus     Topic = "calculus"
	TopicStatistics   Topic = "statistics"
	TopicGeometry     Topic = "geometry"
	TopicGraphing     Topic = "graphing"
	TopicNumber       Topic = "number"
	TopicSequence     Topic = "sequence"
	TopicCounting     Topic = "counting"
	TopicInteger      Topic = "integer"
	TopicNone         Topic = "none"
)

// Classification はトピック分類の結果なのだ。
// Technical なトピックは装飾的なスタイルではなく技術図スタイルを強制するのだ。
type Classification struct {
	Topic     Topic
	Technical bool
}

// topicRule はキーワード集合とトピックの対応なのだ。
type topicRule struct {
	topic     Topic
	technical bool
	keywords  []string
}

// topicRules は優先順位付きの分類ルールなのだ。
// キーワード集合は意図的に重複しており（例: "division" は algebra と number の
// 両方に含まれる）、リスト順で先にマッチしたルールが勝つのだ。
// 並び替えは分類結果そのものを変えるため、順序を変更してはいけないのだ。
var topicRules = []topicRule{
	{TopicAlgebra, true, []string{
		"algebra", "equation", "expression", "variable", "solve", "solving",
		"linear", "quadratic", "polynomial", "factoris", "factoriz", "expand",
		"simplif", "inequalit", "substitut", "division",
	}},
	{TopicLogarithm, true, []string{
		"logarithm", "log law", "exponential", "index law", "indices", "surd",
	}},
	{TopicTrigonometry, true, []string{
		"trigonometr", "sine", "cosine", "tangent", "pythagor", "bearing",
		"unit circle",
	}},
	{TopicCalculus, true, []string{
		"calculus", "derivative", "differentiat", "integral", "integrat",
		"antiderivative", "rate of change", "limit",
	}},
	{TopicStatistics, true, []string{
		"statistic", "probability", "median", "mode", "histogram", "box plot",
		"standard deviation", "frequency", "data",
	}},
	{TopicGeometry, true, []string{
		"geometr", "angle", "triangle", "circle", "polygon", "perimeter",
		"area", "volume", "surface", "symmetry", "transformation", "congruen",
		"similar", "shape",
	}},
	{TopicGraphing, true, []string{
		"graph", "plot", "cartesian", "coordinate", "axis", "axes", "parabola",
		"gradient", "slope", "intercept",
	}},
	{TopicNumber, false, []string{
		"number", "multiplication", "multiply", "times table", "addition",
		"subtraction", "divide", "decimal", "fraction", "percentage",
		"place value", "rounding", "estimation",
	}},
	{TopicSequence, false, []string{
		"sequence", "pattern", "series", "progression", "fibonacci",
	}},
	{TopicCounting, false, []string{
		"counting", "count", "skip",
	}},
	{TopicInteger, false, []string{
		"integer", "negative number", "directed number",
	}},
}

// Classify はユーザー入力をトピック分類するのだ。
// ルールは固定順で評価され、最初にマッチしたものが採用されるのだ。
// どのルールにもマッチしなければ TopicNone（非技術）となるのだ。
func Classify(userInput string) Classification {
	lower := strings.ToLower(userInput)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return Classification{Topic: rule.topic, Technical: rule.technical}
			}
		}
	}
	return Classification{Topic: TopicNone, Technical: false}
}
