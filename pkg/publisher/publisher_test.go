package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

// mockReader は存在済みパスの集合を持つ InputReader なのだ。
type mockReader struct {
	existing map[string][]byte
}

func (m *mockReader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.existing[path]
	if !ok {
		return nil, errors.New("not found: " + path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// mockWriter は書き込み内容を記録する OutputWriter なのだ。
type mockWriter struct {
	written map[string][]byte
	types   map[string]string
	failAll bool
}

func newMockWriter() *mockWriter {
	return &mockWriter{written: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockWriter) Write(_ context.Context, path string, data io.Reader, contentType string) error {
	if m.failAll {
		return errors.New("disk full")
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.written[path] = b
	m.types[path] = contentType
	return nil
}

func TestSaveImage(t *testing.T) {
	t.Run("新規ファイルは書き込まれて成功を返すのだ", func(t *testing.T) {
		reader := &mockReader{existing: map[string][]byte{}}
		writer := newMockWriter()
		store := NewStore(reader, writer, "output", true)

		info := store.SaveImage(context.Background(), []byte("png-bytes"), "subtopic_cover_Fractions_20260901_120000", 0)

		assert.True(t, info.Success)
		assert.Equal(t, 1, info.Index, "保存インデックスは1始まりなのだ")
		assert.Equal(t, "subtopic_cover_Fractions_20260901_120000_1.png", info.Filename)
		assert.Equal(t, len("png-bytes"), info.SizeBytes)
		require.Len(t, writer.written, 1)
		assert.Equal(t, "image/png", writer.types[info.Filepath])
	})

	t.Run("既存ファイルは再書き込みされないのだ", func(t *testing.T) {
		writer := newMockWriter()
		store := NewStore(&mockReader{existing: map[string][]byte{}}, writer, "output", true)

		first := store.SaveImage(context.Background(), []byte("v1"), "base", 0)
		require.True(t, first.Success)

		// 同じパスが存在する状態を再現するのだ
		reader := &mockReader{existing: map[string][]byte{first.Filepath: []byte("v1")}}
		store2 := NewStore(reader, writer, "output", true)

		second := store2.SaveImage(context.Background(), []byte("v2"), "base", 0)
		assert.True(t, second.Success)
		assert.Equal(t, []byte("v1"), writer.written[first.Filepath], "既存の内容が保持されるのだ")
	})

	t.Run("書き込み失敗はエラー文字列付きの失敗サマリになるのだ", func(t *testing.T) {
		writer := newMockWriter()
		writer.failAll = true
		store := NewStore(&mockReader{existing: map[string][]byte{}}, writer, "output", true)

		info := store.SaveImage(context.Background(), []byte("data"), "base", 2)
		assert.False(t, info.Success)
		assert.Equal(t, 3, info.Index)
		assert.Contains(t, info.Error, "保存に失敗")
	})
}

func TestSaveSessionMetadata(t *testing.T) {
	t.Run("バッチ結果がJSONとして書き出されるのだ", func(t *testing.T) {
		writer := newMockWriter()
		store := NewStore(&mockReader{existing: map[string][]byte{}}, writer, "output", true)

		result := domain.BatchResult{
			Success:   true,
			Category:  domain.CategorySubtopicCover,
			SessionID: "abc-123",
		}
		require.NoError(t, store.SaveSessionMetadata(context.Background(), result))
		require.Len(t, writer.written, 1)

		for path, data := range writer.written {
			assert.Contains(t, path, "session_abc-123.json")
			assert.Equal(t, "application/json", writer.types[path])

			var decoded domain.BatchResult
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, "abc-123", decoded.SessionID)
			assert.True(t, decoded.Success)
		}
	})

	t.Run("メタデータ保存が無効なら何も書かないのだ", func(t *testing.T) {
		writer := newMockWriter()
		store := NewStore(&mockReader{existing: map[string][]byte{}}, writer, "output", false)

		require.NoError(t, store.SaveSessionMetadata(context.Background(), domain.BatchResult{SessionID: "x"}))
		assert.Empty(t, writer.written)
	})
}

func TestLoadImage(t *testing.T) {
	t.Run("保存済み画像を読み込めるのだ", func(t *testing.T) {
		reader := &mockReader{existing: map[string][]byte{"output/base_1.png": []byte("stored")}}
		store := NewStore(reader, newMockWriter(), "output", true)

		data, err := store.LoadImage(context.Background(), "output/base_1.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("stored"), data)
	})

	t.Run("存在しないパスはエラーなのだ", func(t *testing.T) {
		store := NewStore(&mockReader{existing: map[string][]byte{}}, newMockWriter(), "output", true)
		_, err := store.LoadImage(context.Background(), "missing.png")
		assert.Error(t, err)
	})
}
