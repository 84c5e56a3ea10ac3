package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viant/recipevec/config"
	"github.com/viant/recipevec/embedding"
	"github.com/viant/recipevec/recipestore"
)

type rootOptions struct {
	root    string
	store   string
	verbose bool
}

// newProfiles builds the embedding clients; tests swap it for hash embedders.
var newProfiles = func(cfg *config.Config) (embedding.Profiles, error) {
	key, err := cfg.EmbeddingAPIKey()
	if err != nil {
		return embedding.Profiles{}, err
	}
	return embedding.NewProfiles(key, cfg.DocumentModel, cfg.QueryModel, embedding.WithBaseURL(cfg.UpstageBaseURL))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "recipevec",
		Short:        "Build and search the recipe vector store",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "project root (default $RECIPEVEC_ROOT or working directory)")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "persistence directory (default <root>/chroma_db)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newBuildCmd(opts), newSearchCmd(opts), newInfoCmd(opts))
	return cmd
}

// setup resolves configuration and the logger shared by all subcommands.
func (o *rootOptions) setup(errOut io.Writer) (*config.Config, *slog.Logger) {
	cfg := config.Load(o.root)
	level := cfg.SlogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	return cfg, slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) storeDir(cfg *config.Config) string {
	if o.store != "" {
		return o.store
	}
	return cfg.VectorStorePath
}

func (o *rootOptions) manager(cmd *cobra.Command) (*recipestore.Manager, *config.Config, error) {
	cfg, logger := o.setup(cmd.ErrOrStderr())
	profiles, err := newProfiles(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding profiles: %w", err)
	}
	m, err := recipestore.New(o.storeDir(cfg), profiles,
		recipestore.WithLogger(logger),
		recipestore.WithSourcePath(cfg.MergedPreprocessedFile),
	)
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}
