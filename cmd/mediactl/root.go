package main

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/config"
	"storybook-media-api/internal/domain/entity"
	einocallback "storybook-media-api/internal/infrastructure/eino/callback"
	"storybook-media-api/internal/wire"
	"storybook-media-api/pkg/logger"
)

// mediaOps 命令行用到的媒体操作，由 media.Service 实现
type mediaOps interface {
	GenerateAllPictures(ctx context.Context, bookID int64, replaceExisting bool) (media.BatchOutcome, error)
	RetryFailedPictures(ctx context.Context, bookID int64) (media.BatchOutcome, error)
	GeneratePicture(ctx context.Context, pageID int64, replaceExisting bool) (media.Outcome, error)
	GenerateFullAudio(ctx context.Context, bookID int64, voice, format string) (*entity.Asset, error)
	Publish(ctx context.Context, bookID int64) (*media.PublishResult, error)
	Archive(ctx context.Context, bookID int64) (*entity.Book, error)
	Unarchive(ctx context.Context, bookID int64) (*entity.Book, error)
	AudioPlaylist(ctx context.Context, bookID int64) ([]media.PlaylistEntry, error)
	OpenBookAudio(ctx context.Context, bookID int64) (io.ReadCloser, *entity.Asset, error)
}

type commandContext struct {
	configDir *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// newService 测试中替换
	newService func(ctx context.Context, cfg *config.Config) (mediaOps, func(), error)
}

func newCommandContext(configDir *string) *commandContext {
	return &commandContext{
		configDir: configDir,
		newService: func(ctx context.Context, cfg *config.Config) (mediaOps, func(), error) {
			return wire.InitializeMediaService(ctx, cfg)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		dir := ""
		if c.configDir != nil {
			dir = strings.TrimSpace(*c.configDir)
		}
		if dir == "" {
			c.config, c.configErr = config.Load()
			return
		}
		c.config, c.configErr = config.LoadFrom(dir)
	})
	return c.config, c.configErr
}

func (c *commandContext) withService(cmd *cobra.Command, fn func(svc mediaOps) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	svc, cleanup, err := c.newService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(svc)
}

func newRootCommand() *cobra.Command {
	var configDir string
	ctx := newCommandContext(&configDir)
	return buildRootCommand(ctx)
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mediactl",
		Short:         "Storybook media pipeline CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
			einocallback.Init()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(ctx.configDir, "config-dir", "c", "", "Configuration directory (default ./configs)")

	rootCmd.AddCommand(newPicturesCommand(ctx))
	rootCmd.AddCommand(newPageCommand(ctx))
	rootCmd.AddCommand(newAudioCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newArchiveCommand(ctx))
	rootCmd.AddCommand(newUnarchiveCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))

	return rootCmd
}
