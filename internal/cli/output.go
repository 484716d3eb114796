package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rpeterson/recollect/internal/model"
	"github.com/rpeterson/recollect/internal/store"
)

// outputFormat resolves the rendering format: flag first, then env config.
func outputFormat() string {
	if formatFlag != "" {
		return formatFlag
	}
	return loadConfig().Format
}

// printOut renders v in the configured format. Unknown shapes in text mode
// fall back to JSON rather than dropping data.
func printOut(v interface{}) {
	if outputFormat() != "text" {
		printJSON(v)
		return
	}
	printText(v)
}

func printText(v interface{}) {
	switch t := v.(type) {
	case *model.Entry:
		printEntryText(t, 0)
	case recallOutput:
		printEntryText(t.Entry, 0)
		if len(t.Related) > 0 {
			fmt.Println("related:")
			for _, r := range t.Related {
				fmt.Printf("  %s  shared=%d  %s\n", r.ID, r.SharedConcepts, r.Snippet)
			}
		}
	case []model.ScoredEntry:
		for _, r := range t {
			fmt.Printf("%.3f  %s  [%s]  %s\n", r.Score, r.ID, r.Category, model.Snippet(r.Content, 60))
		}
	case []model.RelatedEntry:
		for _, r := range t {
			fmt.Printf("%s  shared=%d  %s\n", r.ID, r.SharedConcepts, r.Snippet)
		}
	case []model.CategoryCount:
		for _, c := range t {
			fmt.Printf("%-20s %d\n", c.Category, c.Count)
		}
	case []model.Session:
		for _, sess := range t {
			fmt.Printf("%s  %-6s  %s  %s\n", sess.ID, sess.Status,
				sess.CreatedAt.Format("2006-01-02 15:04"), sess.Goal)
		}
	case *model.SessionSummary:
		fmt.Printf("session %s (%s)\n", t.ID, t.Status)
		fmt.Printf("goal:      %s\n", t.Goal)
		fmt.Printf("duration:  %s\n", t.Duration)
		fmt.Printf("insights:  %d, decisions: %d\n", t.InsightCount, t.DecisionCount)
		for _, ev := range t.Events {
			fmt.Printf("  %d. [%s] %s\n", ev.Ordinal, ev.Kind, ev.Content)
		}
	case *model.SynthesisReport:
		fmt.Printf("candidates: %d\n", t.CandidateCount)
		for _, g := range t.Groups {
			fmt.Printf("%s (%d): %s\n", g.Concept, g.MemberCount, g.Summary)
			for _, sn := range g.Snippets {
				fmt.Printf("  - %s\n", sn)
			}
		}
		if len(t.Isolated) > 0 {
			fmt.Println("isolated:")
			for _, iso := range t.Isolated {
				fmt.Printf("  %s  %s\n", iso.ID, iso.Snippet)
			}
		}
	case *store.Stats:
		fmt.Printf("db:        %s (%d bytes)\n", t.DBPath, t.DBSizeBytes)
		fmt.Printf("entries:   %d\n", t.TotalEntries)
		fmt.Printf("concepts:  %d\n", t.IndexedConcepts)
		fmt.Printf("sessions:  %d (%d active)\n", t.TotalSessions, t.ActiveSessions)
	case map[string]string:
		printKV(t)
	case map[string]int:
		for k, n := range t {
			fmt.Printf("%s: %d\n", k, n)
		}
	default:
		printJSON(v)
	}
}

func printEntryText(e *model.Entry, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Printf("%s%s  [%s]\n", pad, e.ID, e.Category)
	fmt.Printf("%s%s\n", pad, e.Content)
	if len(e.Concepts) > 0 {
		fmt.Printf("%sconcepts: %s\n", pad, strings.Join(e.Concepts, ", "))
	}
	if len(e.Tags) > 0 {
		fmt.Printf("%stags: %s\n", pad, strings.Join(e.Tags, ", "))
	}
}

func printKV(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, m[k])
	}
}
