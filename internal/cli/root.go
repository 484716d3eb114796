// Package cli implements the recollect CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpeterson/recollect/internal/config"
	"github.com/rpeterson/recollect/internal/store"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recollect",
	Short: "Persistent collaborative memory and session tracking",
	Long: "A local knowledge store for insights and decisions. Entries are indexed by\n" +
		"extracted concepts, ranked on retrieval, and grouped on demand; sessions scope\n" +
		"a unit of work and accumulate insight/decision events until closed.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RECOLLECT_DB or ~/.recollect/recollect.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: json or text")
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return loadConfig().DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
