package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "synthesize [topic]",
		Short: "Group stored entries into a synthesis report",
		Long:  "Cluster entries by their dominant shared concept. An optional topic restricts candidates to entries overlapping the topic's concepts.",
		Run:   runSynthesize,
	}

	RootCmd.AddCommand(cmd)
}

func runSynthesize(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	report, err := s.Synthesize(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("synthesize", err)
	}

	printOut(report)
}
