package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Embed the recipe corpus and write the vector store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cfg, err := root.manager(cmd)
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.MergedPreprocessedFile
			}
			store, err := m.Build(cmd.Context(), input)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("source %s not found", input)
			}
			defer store.Close()
			info := store.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "built %d documents into %s (model %s, dim %d)\n",
				info.Count, m.PersistDir(), info.Model, info.Dimension)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "recipe JSON file (default <root>/preprocessed_data/all_recipes_cleaned.json)")
	return cmd
}
