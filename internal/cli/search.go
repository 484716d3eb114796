package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpeterson/recollect/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries by concept overlap",
		Long:  "Rank stored entries against the query. Entries sharing no concept with the query are excluded.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 0, "Max results (default from $RECOLLECT_SEARCH_LIMIT or 10)")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = loadConfig().SearchLimit
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query:    strings.Join(args, " "),
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	printOut(results)
}
