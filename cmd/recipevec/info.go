package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/recipevec/vector"
)

func newInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show resolved paths and store status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _ := root.setup(cmd.ErrOrStderr())
			out := cmd.OutOrStdout()
			dir := root.storeDir(cfg)
			fmt.Fprintf(out, "project root:      %s\n", cfg.ProjectRoot)
			fmt.Fprintf(out, "crawled data:      %s\n", cfg.CrawledDataDir)
			fmt.Fprintf(out, "preprocessed data: %s\n", cfg.PreprocessedDataDir)
			fmt.Fprintf(out, "merged file:       %s\n", cfg.MergedPreprocessedFile)
			fmt.Fprintf(out, "vector store:      %s\n", dir)
			fmt.Fprintf(out, "document model:    %s\n", cfg.DocumentModel)
			fmt.Fprintf(out, "query model:       %s\n", cfg.QueryModel)
			if !vector.Exists(dir) {
				fmt.Fprintln(out, "store status:      absent")
				return nil
			}
			m, _, err := root.manager(cmd)
			if err != nil {
				return err
			}
			store, err := m.Load(cmd.Context())
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(out, "store status:      absent")
				return nil
			}
			defer store.Close()
			info := store.Info()
			fmt.Fprintf(out, "store status:      %d documents, model %s, dim %d, built %s\n",
				info.Count, info.Model, info.Dimension, info.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
