package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-eduimage-kit/internal/config"
	"github.com/shouni/go-eduimage-kit/pkg/generator"
	"github.com/shouni/go-eduimage-kit/pkg/prompts"
	"github.com/shouni/go-eduimage-kit/pkg/publisher"
	"github.com/shouni/go-eduimage-kit/pkg/runner"
	"github.com/shouni/go-eduimage-kit/pkg/validator"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持するのだ。
// これを各コマンドに渡すことで、依存関係の注入を簡素化するのだ。
type AppContext struct {
	Config     *config.Config          // Config は環境変数とカテゴリ定義から読み込まれた設定なのだ
	Reader     remoteio.InputReader    // Reader は参照画像や既存成果物の読み込みに使う入力元なのだ
	Writer     remoteio.OutputWriter   // Writer は生成画像とメタデータの保存先なのだ
	Runner     *runner.Runner          // Runner はバッチ生成のオーケストレータなのだ
	httpClient httpkit.HTTPClient // httpClient は外部URLからの画像取得に使う共通クライアントなのだ
}

// NewAppContext は設定から全コンポーネントを組み上げるのだ。
func NewAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	httpClient := httpkit.New(cfg.DownloadTimeout)

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントファクトリの作成に失敗しました: %w", err)
	}
	reader, err := gcsFactory.InputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, err
	}

	client := generator.New(generator.Options{
		APIURL:             cfg.APIURL,
		APIKey:             cfg.APIKey,
		MaxRetries:         cfg.MaxRetries,
		RetryDelay:         cfg.RetryDelay,
		InterRequestDelay:  cfg.InterRequestDelay,
		MaxReferenceImages: cfg.MaxReferenceImages,
		DryRun:             cfg.IsDryRun(),
	}, &http.Client{Timeout: cfg.RequestTimeout}, httpClient)

	store := publisher.NewStore(reader, writer, cfg.OutputDir, cfg.SaveMetadata)

	run := runner.New(
		cfg,
		prompts.NewComposer(cfg),
		prompts.NewSelector(nil),
		client,
		store,
		validator.New(cfg.AspectTolerance, cfg.MinFileSize, cfg.MaxFileSize),
		runner.Options{ModelFlash: cfg.ModelFlash, ModelPro: cfg.ModelPro},
	)

	return &AppContext{
		Config:     cfg,
		Reader:     reader,
		Writer:     writer,
		Runner:     run,
		httpClient: httpClient,
	}, nil
}
