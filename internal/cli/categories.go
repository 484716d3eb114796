package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with entry counts",
		Run:   runCategories,
	}

	RootCmd.AddCommand(cmd)
}

func runCategories(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	categories, err := s.ListCategories(cmd.Context())
	if err != nil {
		exitErr("categories", err)
	}

	if len(categories) == 0 {
		fmt.Println("[]")
		return
	}
	printOut(categories)
}
