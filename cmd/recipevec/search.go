package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/recipevec/vector"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		k     int
		where []string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the vector store with the query profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseWhere(where)
			if err != nil {
				return err
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
				return fmt.Errorf("no vector store in %s; run build first", m.PersistDir())
			}
			defer store.Close()

			query := strings.Join(args, " ")
			var matches []vector.Match
			if len(filter) > 0 {
				matches, err = store.SimilaritySearchWithFilter(cmd.Context(), query, k, filter)
			} else {
				matches, err = store.SimilaritySearch(cmd.Context(), query, k)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, match := range matches {
				fmt.Fprintf(out, "%2d. %.4f  %s  %s\n", i+1, match.Score, match.Metadata["title"], match.Metadata["url"])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 4, "number of results")
	cmd.Flags().StringArrayVar(&where, "where", nil, "metadata filter key=value (repeatable)")
	return cmd
}

func parseWhere(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --where %q, want key=value", p)
		}
		out[key] = value
	}
	return out, nil
}
