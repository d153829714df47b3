// Package prompts は生成 API へ送る指示文の組み立てを担当するのだ。
// トピック分類・スタイル選択・テンプレート合成はいずれも純粋関数であり、
// 唯一の状態はスタイルガイドファイルの読み取りキャッシュなのだ。
package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// StylePhotorealistic は context_introduction で写実表現を選ぶフラグ値なのだ。
const StylePhotorealistic = "photorealistic"

// CategoryProvider はカテゴリ設定の読み取りインターフェースなのだ。
type CategoryProvider interface {
	Category(name domain.Category) (domain.CategoryConfig, error)
	StyleGuideFile(name domain.Category) (string, error)
}

// BuildParams はプロンプト1枚分の組み立てパラメータなのだ。
type BuildParams struct {
	Category  domain.Category
	UserInput string
	Style     string // スタイル ID。context_introduction では表現フラグを兼ねるのだ
	YearLevel string
	Age       string
	Context   string // 追加の文脈説明。空なら UserInput のみで組み立てるのだ

	// 解決済みの目標サイズ。0 の場合はカテゴリのデフォルトを使うのだ
	Width  int
	Height int

	// バッチ内の位置。構図バリエーションの巡回に使うのだ
	VariationIndex  int
	TotalVariations int
}

// Composer はカテゴリ別のプロンプト組み立て器なのだ。
// スタイルガイドの読み取り結果はインスタンス所有のキャッシュに保持されるのだ。
type Composer struct {
	categories CategoryProvider
	guides     *cache.Cache
	sf         singleflight.Group
	readFile   func(string) ([]byte, error)
}

// NewComposer はプロンプト組み立て器を生成するのだ。
func NewComposer(categories CategoryProvider) *Composer {
	return &Composer{
		categories: categories,
		guides:     cache.New(cache.NoExpiration, 0),
		readFile:   os.ReadFile,
	}
}

// Build はカテゴリに応じたプロンプトを組み立てるのだ。
// 未知のカテゴリは domain.ErrUnknownCategory を返すのだ。
func (c *Composer) Build(p BuildParams) (string, error) {
	cat, err := c.categories.Category(p.Category)
	if err != nil {
		return "", err
	}

	width, height := p.Width, p.Height
	if width <= 0 || height <= 0 {
		width, height = cat.Width, cat.Height
	}

	var prompt string
	switch p.Category {
	case domain.CategorySubtopicCover:
		prompt = c.buildSubtopicPrompt(p, cat, width, height)
	case domain.CategoryTuteroAI:
		prompt = buildTuteroPrompt(p, width, height)
	case domain.CategoryClassroomActivity:
		prompt = buildClassroomPrompt(p, width, height)
	case domain.CategoryContextIntroduction:
		prompt = buildContextPrompt(p, width, height)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, p.Category)
	}

	slog.Debug("プロンプトを組み立てました",
		"category", p.Category,
		"user_input", p.UserInput,
		"prompt_length", len(prompt),
	)
	return prompt, nil
}

// aspectLine は目標サイズの宣言文なのだ。幅・高さはプロンプト全体で
// この1文にのみ現れるようにし、矛盾する比率の二重宣言を防ぐのだ。
func aspectLine(width, height int) string {
	orientation := "LANDSCAPE"
	if height > width {
		orientation = "PORTRAIT"
	}
	return fmt.Sprintf("ASPECT RATIO: The image MUST be exactly %dx%d pixels - %s orientation. This is NON-NEGOTIABLE.", width, height, orientation)
}

func (c *Composer) buildSubtopicPrompt(p BuildParams, cat domain.CategoryConfig, width, height int) string {
	yearLevel := p.YearLevel
	if yearLevel == "" {
		yearLevel = "Year 8"
	}

	cls := Classify(p.UserInput)

	// 技術系トピックは装飾スタイルを破棄して技術図テンプレートを強制するのだ
	styleID := p.Style
	if cls.Technical {
		styleID = "technical_diagram"
	}

	template := ""
	if st := cat.StyleByID(styleID); st != nil {
		template = st.PromptTemplate
	}
	if template == "" && cls.Technical {
		template = technicalDiagramTemplate
	}

	if template == "" {
		return c.buildDefaultSubtopicPrompt(p, width, height, yearLevel)
	}

	permission, ok := permittedContentBlocks[cls.Topic]
	if !ok {
		permission = strictNoTextBlock
	}

	var b strings.Builder
	b.WriteString(permission)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "CRITICAL TASK: Create an image representing the mathematical subtopic %q for %s students.\n\n", p.UserInput, yearLevel)

	b.WriteString("ULTRA-CRITICAL RELEVANCE RULES - READ CAREFULLY:\n")
	fmt.Fprintf(&b, "- Show ONLY what is directly relevant to %q - ABSOLUTELY NOTHING ELSE\n", p.UserInput)
	if exemplars, ok := topicExemplars[cls.Topic]; ok {
		b.WriteString(exemplars)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(forbiddenElementsBlock)
	b.WriteString("\n\n")
	b.WriteString(minimalismBlock)
	b.WriteString("\n\n")

	b.WriteString("VISUAL STYLE TO APPLY:\n")
	b.WriteString(template)
	b.WriteString("\n\n")

	b.WriteString(finalReminderBlock)
	b.WriteString("\n\n")
	b.WriteString(aspectLine(width, height))
	b.WriteString("\n\n")
	b.WriteString(negativePromptSuffixes[cls.Topic])

	return b.String()
}

// buildDefaultSubtopicPrompt はスタイルテンプレートが無い場合の既定プロンプトなのだ。
// カテゴリにスタイルガイドファイルがあれば末尾に取り込むのだ。
func (c *Composer) buildDefaultSubtopicPrompt(p BuildParams, width, height int, yearLevel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a minimal, flat 3D illustration representing the mathematical subtopic %q for %s.\n\n", p.UserInput, yearLevel)
	b.WriteString(aspectLine(width, height))
	b.WriteString("\n\n")
	b.WriteString(`Visual Style:
- Soft matte geometric shapes with subtle depth and shadows
- Muted pastel color palette: soft blue, mint green, coral pink, butter yellow
- Clean off-white background with a paper-craft aesthetic

Composition:
- All elements perfectly centered with generous negative space
- Single clear focal point

CRITICAL REQUIREMENTS:
- NO text, NO characters, NO labels
- NO complex equations or formulas
- Focus on abstract, symbolic representation of the subtopic
- Must be mathematically accurate for the concept`)

	if guide := c.styleGuide(p.Category); guide != "" {
		b.WriteString("\n\nSTYLE GUIDE:\n")
		b.WriteString(guide)
	}
	return b.String()
}

// styleGuide はカテゴリのスタイルガイドを読み取るのだ。
// 読み取りは singleflight で一本化し、結果は無期限キャッシュするのだ。
// ファイルが無い場合は空文字を返すのだ（ガイドは任意要素なのだ）。
func (c *Composer) styleGuide(category domain.Category) string {
	key := string(category)
	if v, found := c.guides.Get(key); found {
		return v.(string)
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		path, err := c.categories.StyleGuideFile(category)
		if err != nil {
			return "", err
		}
		data, err := c.readFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		slog.Debug("スタイルガイドは利用できません", "category", category, "error", err)
		c.guides.Set(key, "", cache.NoExpiration)
		return ""
	}

	guide := v.(string)
	c.guides.Set(key, guide, cache.NoExpiration)
	return guide
}

func buildTuteroPrompt(p BuildParams, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a 3D rendered illustration showing ONLY the Tutero AI robot character in a scene related to %s.\n\n", p.UserInput)

	b.WriteString("CRITICAL REQUIREMENTS - MUST FOLLOW:\n1. ")
	b.WriteString(aspectLine(width, height))
	b.WriteString("\n2. CHARACTER DESIGN: Use the EXACT character design from the reference images provided. DO NOT modify the character's appearance.\n\n")

	b.WriteString(`Character (COPY EXACTLY from reference images):
- THIS IMAGE SHOWS ONLY THE TUTERO AI CHARACTER - NO STUDENTS OR OTHER PEOPLE
- EXACT body shape, colors, facial features and all design details
- Takes up 40-60% of the frame as the sole character

`)
	fmt.Fprintf(&b, `Context Scene for %s:
- The character is placed IN the context, demonstrating or exploring it
- Background and props appropriate to %s
- The context is the SETTING, the character is the SUBJECT

`, p.UserInput, p.UserInput)
	if p.Context != "" {
		fmt.Fprintf(&b, "Additional scene context: %s\n\n", p.Context)
	}

	b.WriteString(`Visual Style:
- 3D rendered, modern animation quality, friendly and approachable
- NO floating mathematical symbols or diagrams
- NO holographic overlays or tech particle effects
- Clean, uncluttered composition with warm inviting lighting
`)

	if p.TotalVariations > 1 {
		b.WriteString("\n")
		b.WriteString(tuteroPoseVariants[p.VariationIndex%len(tuteroPoseVariants)])
		b.WriteString("\n")
	}

	if isNetSport(p.UserInput) {
		b.WriteString("\n")
		b.WriteString(netSportDirective)
		b.WriteString("\n")
	}

	return b.String()
}

func isNetSport(userInput string) bool {
	lower := strings.ToLower(userInput)
	for _, kw := range netSportKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func buildClassroomPrompt(p BuildParams, width, height int) string {
	age := p.Age
	if age == "" {
		age = "middle school"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a vibrant, illustrated scene showing the Tutero AI robot character physically present and helping diverse students with %s in a modern classroom setting.\n\n", p.UserInput)

	b.WriteString("CRITICAL REQUIREMENTS - MUST FOLLOW:\n1. ")
	b.WriteString(aspectLine(width, height))
	b.WriteString("\n2. CHARACTER DESIGN: Match the reference images EXACTLY for the Tutero AI character design.\n\n")

	b.WriteString(`Tutero AI Character:
- PHYSICALLY PRESENT in the scene, floating or hovering among the students
- NEVER on a tablet, screen or digital device
- NEVER free-floating in empty space: always grounded in the scene, near the students
- Takes up 20-30% of the frame

`)
	fmt.Fprintf(&b, `Students (2-4 students):
- Diverse group: varied ethnicities, genders, appearances
- Age: %s
- Engaged, collaborative, actively working on %s
- Interacting with each other AND with the robot face-to-face

`, age, p.UserInput)

	b.WriteString(`Setting:
- Modern classroom or collaborative learning space
- Physical learning materials: notebooks, worksheets, whiteboards, manipulatives
- Soft, muted background with bright welcoming lighting
- Illustrated, semi-realistic style - not photographic, not flat cartoon
`)

	b.WriteString("\n")
	b.WriteString(classroomCompositionVariants[p.VariationIndex%len(classroomCompositionVariants)])
	b.WriteString("\n")

	return b.String()
}

func buildContextPrompt(p BuildParams, width, height int) string {
	var b strings.Builder
	if p.Style == StylePhotorealistic {
		fmt.Fprintf(&b, "Create a photorealistic, editorial-quality photograph-style image showing %s.\n\n", p.UserInput)
		b.WriteString(`Visual Style:
- Photorealistic rendering with natural lighting and real-world materials
- Professional photographic composition with clear depth of field
`)
	} else {
		fmt.Fprintf(&b, "Create a polished cartoon / 3D-animation style illustration showing %s.\n\n", p.UserInput)
		b.WriteString(`Visual Style:
- Modern 3D animation quality with soft shapes and warm colors
- Clean, appealing, family-friendly rendering
`)
	}

	fmt.Fprintf(&b, `
Context Scene (MUST BE ACCURATE):
- Real-world scenario: %s
- Setting, perspective and elements accurate to the actual context
- Inspiring, dynamic and engaging atmosphere

`, p.UserInput)
	if p.Context != "" {
		fmt.Fprintf(&b, "Additional scene context: %s\n\n", p.Context)
	}

	b.WriteString(aspectLine(width, height))
	b.WriteString("\n\n")
	b.WriteString(contextStrictConstraints)
	b.WriteString("\n\n")
	b.WriteString(contextNegativeSuffix)

	return b.String()
}
