package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePNG はテスト用の単色 PNG を生成するのだ。
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	t.Run("PNGのサイズとフォーマットを読み取れるのだ", func(t *testing.T) {
		data := makePNG(t, 423, 24)
		w, h, format, err := Dimensions(data)
		require.NoError(t, err)
		assert.Equal(t, 423, w)
		assert.Equal(t, 24, h)
		assert.Equal(t, "png", format)
	})

	t.Run("壊れたデータはエラーになるのだ", func(t *testing.T) {
		_, _, _, err := Dimensions([]byte("not an image"))
		assert.Error(t, err)
	})
}

func TestAspectRatioDiff(t *testing.T) {
	t.Run("同一アスペクト比なら差分はゼロなのだ", func(t *testing.T) {
		assert.InDelta(t, 0.0, AspectRatioDiff(1920, 1080, 960, 540), 1e-9)
	})

	t.Run("差分は期待比率に対する相対値なのだ", func(t *testing.T) {
		// actual 1.700, expected 1.7778 → |0.0778| / 1.7778 ≈ 4.37%
		diff := AspectRatioDiff(1700, 1000, 1920, 1080)
		assert.InDelta(t, 0.04375, diff, 0.0005)
	})

	t.Run("縦長の期待比率でも相対値で評価されるのだ", func(t *testing.T) {
		// actual 0.7143, expected 0.6667 → 絶対差は 0.0476 だが相対差は約 7.1%
		diff := AspectRatioDiff(1000, 1400, 1000, 1500)
		assert.InDelta(t, 0.0714, diff, 0.0005)
	})

	t.Run("極端な横長画像は大きな差分を返すのだ", func(t *testing.T) {
		diff := AspectRatioDiff(423, 24, 1920, 1080)
		assert.Greater(t, diff, 5.0)
	})
}

func TestCorrectAspectRatio(t *testing.T) {
	t.Run("極端にずれた画像でも目標サイズへリサイズされるのだ", func(t *testing.T) {
		data := makePNG(t, 423, 24)
		corrected := CorrectAspectRatio(data, 1920, 1080)

		w, h, format, err := Dimensions(corrected)
		require.NoError(t, err)
		assert.Equal(t, 1920, w)
		assert.Equal(t, 1080, h)
		assert.Equal(t, "png", format)
	})

	t.Run("既に目標サイズのPNGは入力がそのまま返るのだ", func(t *testing.T) {
		data := makePNG(t, 100, 100)
		corrected := CorrectAspectRatio(data, 100, 100)
		assert.Equal(t, data, corrected, "再エンコードせずに返すのだ")
	})

	t.Run("補正後の再補正は寸法を変えないのだ", func(t *testing.T) {
		data := makePNG(t, 800, 600)
		once := CorrectAspectRatio(data, 1920, 1080)
		twice := CorrectAspectRatio(once, 1920, 1080)

		w, h, _, err := Dimensions(twice)
		require.NoError(t, err)
		assert.Equal(t, 1920, w)
		assert.Equal(t, 1080, h)
	})

	t.Run("デコードできないデータは元のバイト列が返るのだ", func(t *testing.T) {
		broken := []byte("definitely not an image")
		assert.Equal(t, broken, CorrectAspectRatio(broken, 1920, 1080))
	})

	t.Run("不正な目標サイズでは何もしないのだ", func(t *testing.T) {
		data := makePNG(t, 100, 100)
		assert.Equal(t, data, CorrectAspectRatio(data, 0, 1080))
	})
}
