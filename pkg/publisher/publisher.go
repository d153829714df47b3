// Package publisher は生成画像とセッション成果物の永続化を担当するのだ。
// 実際の書き込み先は go-remote-io 経由でローカル/GCS を透過的に扱うのだ。
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-utils/urlpath"

	"github.com/shouni/go-eduimage-kit/pkg/domain"
)

const (
	imageContentType    = "image/png"
	metadataContentType = "application/json"
)

// InputReader は保存先の存在確認に使う読み取りインターフェースなのだ。
// remoteio.InputReader がこれを満たすのだ。
type InputReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// OutputWriter は成果物の書き込みインターフェースなのだ。
// remoteio.OutputWriter がこれを満たすのだ。
type OutputWriter interface {
	Write(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Store は画像とメタデータの保存先なのだ。
type Store struct {
	reader       InputReader
	writer       OutputWriter
	outputDir    string
	saveMetadata bool
}

// NewStore は保存先を生成するのだ。
func NewStore(reader InputReader, writer OutputWriter, outputDir string, saveMetadata bool) *Store {
	return &Store{
		reader:       reader,
		writer:       writer,
		outputDir:    outputDir,
		saveMetadata: saveMetadata,
	}
}

// SaveImage は画像1枚を保存し、結果サマリを返すのだ。
//
// ファイル名は {base}_{index+1}.png となるのだ。同名ファイルが既に存在する
// 場合は書き込みをスキップして成功として扱うのだ（保存は冪等なのだ）。
// 失敗してもエラーは返さず、Success=false の SaveInfo に変換するのだ。
func (s *Store) SaveImage(ctx context.Context, data []byte, baseFilename string, index int) domain.SaveInfo {
	info := domain.SaveInfo{Index: index + 1}

	filename := fmt.Sprintf("%s_%d.png", baseFilename, index+1)
	path, err := urlpath.ResolvePath(s.outputDir, filename)
	if err != nil {
		info.Error = fmt.Sprintf("保存パスの解決に失敗しました: %v", err)
		return info
	}

	info.Filename = filename
	info.Filepath = path
	info.SizeBytes = len(data)

	if s.exists(ctx, path) {
		slog.Debug("保存をスキップします（既に存在します）", "path", path)
		info.Success = true
		return info
	}

	if err := s.writer.Write(ctx, path, bytes.NewReader(data), imageContentType); err != nil {
		info.Error = fmt.Sprintf("画像の保存に失敗しました: %v", err)
		return info
	}

	slog.Info("画像を保存しました", "path", path, "size_bytes", len(data))
	info.Success = true
	return info
}

// SaveSessionMetadata はバッチ結果をセッション成果物として書き出すのだ。
// メタデータ保存が無効化されている場合は何もしないのだ。
func (s *Store) SaveSessionMetadata(ctx context.Context, result domain.BatchResult) error {
	if !s.saveMetadata {
		return nil
	}

	filename := fmt.Sprintf("session_%s.json", result.SessionID)
	path, err := urlpath.ResolvePath(s.outputDir, filename)
	if err != nil {
		return fmt.Errorf("メタデータパスの解決に失敗しました: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("メタデータのシリアライズに失敗しました: %w", err)
	}

	if err := s.writer.Write(ctx, path, bytes.NewReader(payload), metadataContentType); err != nil {
		return fmt.Errorf("メタデータの保存に失敗しました (path: %s): %w", path, err)
	}

	slog.Info("セッションメタデータを保存しました", "path", path)
	return nil
}

// LoadImage は保存済み画像を読み込むのだ。リファイン時のベース画像取得に使うのだ。
func (s *Store) LoadImage(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.reader.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (path: %s): %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("画像の読み取りに失敗しました (path: %s): %w", path, err)
	}
	return data, nil
}

func (s *Store) exists(ctx context.Context, path string) bool {
	rc, err := s.reader.Open(ctx, path)
	if err != nil {
		return false
	}
	rc.Close()
	return true
}
