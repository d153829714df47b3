package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
	"github.com/shouni/go-eduimage-kit/pkg/generator"
	"github.com/shouni/go-eduimage-kit/pkg/prompts"
)

// --- テスト用モック群なのだ ---

type mockConfig struct {
	cat    domain.CategoryConfig
	refDir string
}

func (m *mockConfig) Category(name domain.Category) (domain.CategoryConfig, error) {
	if m.cat.Name == "" {
		return domain.CategoryConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, name)
	}
	return m.cat, nil
}

func (m *mockConfig) ReferenceImageDir(domain.Category) (string, error) {
	return m.refDir, nil
}

type mockComposer struct {
	built []prompts.BuildParams
	fail  map[int]bool // VariationIndex 単位で失敗させるのだ
}

func (m *mockComposer) Build(p prompts.BuildParams) (string, error) {
	m.built = append(m.built, p)
	if m.fail[p.VariationIndex] {
		return "", fmt.Errorf("template broken")
	}
	return fmt.Sprintf("prompt[%d] %s style=%s %dx%d", p.VariationIndex, p.UserInput, p.Style, p.Width, p.Height), nil
}

type mockSelector struct{}

func (m *mockSelector) SelectStyles(category domain.Category, count int, _, _ string, _ []domain.StyleTemplate) []string {
	styles := make([]string, count)
	if category == domain.CategorySubtopicCover {
		for i := range styles {
			styles[i] = "watercolor"
		}
	}
	return styles
}

type slotResult struct {
	data []byte
	err  error
}

type mockClient struct {
	results  map[int]slotResult
	received []generator.GenerateParams
	fatal    error
	fatalAt  int
}

func (m *mockClient) GenerateBatch(_ context.Context, items []generator.GenerateParams, onStart func(int), onResult generator.OnResult) error {
	m.received = items
	for i := range items {
		if onStart != nil {
			onStart(i)
		}
		if m.fatal != nil && i == m.fatalAt {
			return m.fatal
		}
		res := m.results[i]
		if onResult != nil {
			onResult(i, res.data, res.err)
		}
	}
	return nil
}

func (m *mockClient) RefineImage(_ context.Context, p generator.RefineParams) ([]byte, error) {
	if m.fatal != nil {
		return nil, m.fatal
	}
	res := m.results[0]
	return res.data, res.err
}

type mockStore struct {
	saved    []string
	metadata []domain.BatchResult
	images   map[string][]byte
}

func (m *mockStore) SaveImage(_ context.Context, data []byte, baseFilename string, index int) domain.SaveInfo {
	filename := fmt.Sprintf("%s_%d.png", baseFilename, index+1)
	m.saved = append(m.saved, filename)
	return domain.SaveInfo{Index: index + 1, Success: true, Filename: filename, SizeBytes: len(data)}
}

func (m *mockStore) SaveSessionMetadata(_ context.Context, result domain.BatchResult) error {
	m.metadata = append(m.metadata, result)
	return nil
}

func (m *mockStore) LoadImage(_ context.Context, path string) ([]byte, error) {
	data, ok := m.images[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return data, nil
}

type mockValidator struct {
	validated int
}

func (m *mockValidator) ValidateBatch(images []domain.GeneratedImage, _, _ int) domain.ValidationSummary {
	summary := domain.ValidationSummary{SuccessRate: "0.0%"}
	for _, img := range images {
		if img.Save.Success && img.Data != nil {
			summary.Total++
			summary.Passed++
		}
	}
	m.validated = summary.Total
	return summary
}

type testEnv struct {
	runner    *Runner
	config    *mockConfig
	composer  *mockComposer
	client    *mockClient
	store     *mockStore
	validator *mockValidator
}

func newTestEnv() *testEnv {
	env := &testEnv{
		config: &mockConfig{
			cat: domain.CategoryConfig{
				Name: "subtopic_cover", AspectRatio: "16:9", Width: 1920, Height: 1080,
				ReferenceDir: "reference/subtopic_cover",
				Styles:       []domain.StyleTemplate{{ID: "watercolor", PromptTemplate: "wc"}},
			},
			refDir: "reference/subtopic_cover/images",
		},
		composer:  &mockComposer{},
		client:    &mockClient{results: map[int]slotResult{}},
		store:     &mockStore{images: map[string][]byte{}},
		validator: &mockValidator{},
	}
	env.runner = New(env.config, env.composer, &mockSelector{}, env.client, env.store, env.validator,
		Options{ModelFlash: "model-flash", ModelPro: "model-pro"})
	env.runner.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	env.runner.newID = func() string { return "session-test" }
	return env
}

func basicRequest(count int) domain.GenerationRequest {
	return domain.GenerationRequest{
		Category:  domain.CategorySubtopicCover,
		UserInput: "Calendar Interpretation",
		Count:     count,
	}
}

func TestGenerate(t *testing.T) {
	t.Run("全スロット成功のバッチが成果レコードになるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("img0")}
		env.client.results[1] = slotResult{data: []byte("img1")}

		result, err := env.runner.Generate(context.Background(), basicRequest(2), nil, nil)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, 2, result.TotalGenerated)
		assert.Equal(t, 2, result.TotalRequested)
		assert.Equal(t, "session-test", result.SessionID)
		assert.Equal(t, []string{"model-flash"}, result.ModelsUsed)
		require.Len(t, result.Images, 2)
		assert.True(t, result.Images[0].Success)
		assert.Len(t, env.store.saved, 2)
		assert.Equal(t, 2, env.validator.validated)
		require.Len(t, env.store.metadata, 1, "セッションメタデータが保存されるのだ")
	})

	t.Run("一部失敗でもバッチは続行して成功になるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{err: fmt.Errorf("remote error")}
		env.client.results[1] = slotResult{data: []byte("img1")}

		result, err := env.runner.Generate(context.Background(), basicRequest(2), nil, nil)
		require.NoError(t, err)

		assert.True(t, result.Success, "1枚でも成功すればバッチ成功なのだ")
		assert.Equal(t, 1, result.TotalGenerated)
		require.Len(t, result.Images, 2)
		assert.False(t, result.Images[0].Success)
		assert.Contains(t, result.Images[0].Error, "remote error")
		assert.True(t, result.Images[1].Success)
	})

	t.Run("致命的エラーはバッチを中断してエラーとして返るのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.fatal = generator.ErrAPIKeyInvalid
		env.client.fatalAt = 0

		result, err := env.runner.Generate(context.Background(), basicRequest(3), nil, nil)
		assert.ErrorIs(t, err, generator.ErrAPIKeyInvalid)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
		assert.Empty(t, env.store.metadata, "中断時はメタデータを書かないのだ")
	})

	t.Run("ドライランは画像ゼロの失敗バッチとして記録されるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{} // data も err も nil なのだ

		result, err := env.runner.Generate(context.Background(), basicRequest(1), nil, nil)
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, 0, result.TotalGenerated)
		assert.Empty(t, env.store.saved)
	})

	t.Run("プロンプト構築失敗はそのスロットだけ失敗させるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.composer.fail = map[int]bool{0: true}
		env.client.results[0] = slotResult{data: []byte("img1")}

		result, err := env.runner.Generate(context.Background(), basicRequest(2), nil, nil)
		require.NoError(t, err)

		require.Len(t, result.Images, 2)
		assert.False(t, result.Images[0].Success)
		assert.Contains(t, result.Images[0].Error, "プロンプトの構築に失敗しました")
		assert.True(t, result.Images[1].Success)
		assert.Len(t, env.client.received, 1, "失敗スロットは生成リクエストに含まれないのだ")
	})

	t.Run("スロットごとの結果確定が逐次通知されるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("img0")}
		env.client.results[1] = slotResult{err: fmt.Errorf("remote error")}

		var notified []domain.GeneratedImage
		_, err := env.runner.Generate(context.Background(), basicRequest(2), nil, func(img domain.GeneratedImage) {
			notified = append(notified, img)
		})
		require.NoError(t, err)

		require.Len(t, notified, 2, "成否にかかわらずスロットごとに1回なのだ")
		assert.Equal(t, 0, notified[0].Index)
		assert.True(t, notified[0].Save.Success)
		assert.NotNil(t, notified[0].Data)
		assert.Equal(t, 1, notified[1].Index)
		assert.False(t, notified[1].Save.Success)
		assert.Contains(t, notified[1].Save.Error, "remote error")
	})

	t.Run("進捗は単調増加で総数は枚数+2なのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("a")}
		env.client.results[1] = slotResult{data: []byte("b")}

		var currents []int
		var totals []int
		_, err := env.runner.Generate(context.Background(), basicRequest(2), func(current, total int, _ string) {
			currents = append(currents, current)
			totals = append(totals, total)
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, []int{0, 1, 2, 3, 4}, currents)
		for _, total := range totals {
			assert.Equal(t, 4, total)
		}
	})
}

func TestModelAssignment(t *testing.T) {
	t.Run("両方選択なら偶数flash・奇数proなのだ", func(t *testing.T) {
		env := newTestEnv()
		for i := 0; i < 4; i++ {
			env.client.results[i] = slotResult{data: []byte("x")}
		}

		req := basicRequest(4)
		req.SelectedModels = []string{"flash", "pro"}
		result, err := env.runner.Generate(context.Background(), req, nil, nil)
		require.NoError(t, err)

		models := make([]string, len(env.client.received))
		for i, p := range env.client.received {
			models[i] = p.Model
		}
		assert.Equal(t, []string{"model-flash", "model-pro", "model-flash", "model-pro"}, models)
		assert.ElementsMatch(t, []string{"model-flash", "model-pro"}, result.ModelsUsed)
	})

	t.Run("proのみなら全スロットproなのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("x")}
		env.client.results[1] = slotResult{data: []byte("x")}

		req := basicRequest(2)
		req.SelectedModels = []string{"pro"}
		_, err := env.runner.Generate(context.Background(), req, nil, nil)
		require.NoError(t, err)

		for _, p := range env.client.received {
			assert.Equal(t, "model-pro", p.Model)
		}
	})

	t.Run("未指定なら全スロットflashなのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("x")}

		_, err := env.runner.Generate(context.Background(), basicRequest(1), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "model-flash", env.client.received[0].Model)
	})
}

func TestReferenceSuppression(t *testing.T) {
	t.Run("技術系サブトピックでは参照画像が無効化されるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("x")}

		req := basicRequest(1)
		req.UserInput = "Trigonometry Ratios"
		_, err := env.runner.Generate(context.Background(), req, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, env.client.received[0].ReferenceDir)
	})

	t.Run("非技術系サブトピックでは参照画像が添付されるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("x")}

		_, err := env.runner.Generate(context.Background(), basicRequest(1), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "reference/subtopic_cover/images", env.client.received[0].ReferenceDir)
	})
}

func TestOrientationOverride(t *testing.T) {
	t.Run("portrait指定でバッチ全体のサイズが上書きされるのだ", func(t *testing.T) {
		env := newTestEnv()
		env.client.results[0] = slotResult{data: []byte("x")}

		req := basicRequest(1)
		req.Orientation = domain.OrientationPortrait
		_, err := env.runner.Generate(context.Background(), req, nil, nil)
		require.NoError(t, err)

		p := env.client.received[0]
		assert.Equal(t, domain.PortraitWidth, p.Width)
		assert.Equal(t, domain.PortraitHeight, p.Height)

		require.NotEmpty(t, env.composer.built)
		assert.Equal(t, domain.PortraitWidth, env.composer.built[0].Width)
		assert.Equal(t, domain.PortraitHeight, env.composer.built[0].Height)
	})
}

func TestRefine(t *testing.T) {
	t.Run("ベース画像を読み込み編集結果を保存するのだ", func(t *testing.T) {
		env := newTestEnv()
		env.store.images["output/base_1.png"] = []byte("base")
		env.client.results[0] = slotResult{data: []byte("refined")}

		info, err := env.runner.Refine(context.Background(), domain.RefineRequest{
			Category:      domain.CategorySubtopicCover,
			BaseImagePath: "output/base_1.png",
			Instructions:  "make it blue",
		}, nil)
		require.NoError(t, err)
		assert.True(t, info.Success)
		assert.Len(t, env.store.saved, 1)
	})

	t.Run("ベース画像が無ければエラーなのだ", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.runner.Refine(context.Background(), domain.RefineRequest{
			Category:      domain.CategorySubtopicCover,
			BaseImagePath: "missing.png",
		}, nil)
		assert.Error(t, err)
	})

	t.Run("致命的エラーは伝播するのだ", func(t *testing.T) {
		env := newTestEnv()
		env.store.images["base.png"] = []byte("base")
		env.client.fatal = generator.ErrAPIKeyMissing

		_, err := env.runner.Refine(context.Background(), domain.RefineRequest{
			Category:      domain.CategorySubtopicCover,
			BaseImagePath: "base.png",
		}, nil)
		assert.ErrorIs(t, err, generator.ErrAPIKeyMissing)
	})
}
