package cli

import (
	"github.com/spf13/cobra"

	"github.com/rpeterson/recollect/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [entry-id]",
		Short: "Retrieve an entry by id",
		Long:  "Retrieve a stored entry. Counts as an access; related entries are derived from shared concepts.",
		Args:  cobra.ExactArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().Bool("no-related", false, "Skip the related-entries lookup")

	RootCmd.AddCommand(cmd)
}

type recallOutput struct {
	*model.Entry
	Related []model.RelatedEntry `json:"related,omitempty"`
}

func runRecall(cmd *cobra.Command, args []string) {
	noRelated, _ := cmd.Flags().GetBool("no-related")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entry, err := s.Recall(cmd.Context(), args[0])
	if err != nil {
		exitErr("recall", err)
	}

	out := recallOutput{Entry: entry}

	if !noRelated {
		related, err := s.Related(cmd.Context(), entry.ID, 0)
		if err != nil {
			exitErr("related", err)
		}
		out.Related = related
	}

	printOut(out)
}
