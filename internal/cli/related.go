package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "related [entry-id]",
		Short: "Show entries sharing concepts with an entry",
		Args:  cobra.ExactArgs(1),
		Run:   runRelated,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max related entries")

	RootCmd.AddCommand(cmd)
}

func runRelated(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	related, err := s.Related(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("related", err)
	}

	if len(related) == 0 {
		fmt.Println("[]")
		return
	}
	printOut(related)
}
