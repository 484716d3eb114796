package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpeterson/recollect/internal/model"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all entries as JSON to stdout",
		Run:   runExport,
	}
	RootCmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Store entries from a JSON export (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}
	RootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	// Always JSON so the dump round-trips through import.
	printJSON(entries)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read import", err)
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse import", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), entries)
	if err != nil {
		exitErr(fmt.Sprintf("import (after %d entries)", imported), err)
	}

	fmt.Printf("imported %d entries\n", imported)
}
