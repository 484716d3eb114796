package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rpeterson/recollect/internal/model"
	"github.com/rpeterson/recollect/internal/store"
)

func init() {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Track a unit of work with insight/decision events",
	}

	startCmd := &cobra.Command{
		Use:   "start [goal]",
		Short: "Start a session (ends any session still active)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessionStart,
	}

	insightCmd := &cobra.Command{
		Use:   "insight [content]",
		Short: "Record an insight on the active session",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessionInsight,
	}

	decisionCmd := &cobra.Command{
		Use:   "decision [content]",
		Short: "Record a decision on the active session",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessionDecision,
	}
	decisionCmd.Flags().StringP("reasoning", "r", "", "Reasoning behind the decision")
	decisionCmd.Flags().StringP("alternatives", "a", "", "Comma-separated alternatives considered")

	summaryCmd := &cobra.Command{
		Use:   "summary [session-id]",
		Short: "Summarize a session (default: current)",
		Args:  cobra.MaximumNArgs(1),
		Run:   runSessionSummary,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Run:   runSessionList,
	}
	listCmd.Flags().IntP("limit", "l", 0, "Max sessions (default from $RECOLLECT_SESSION_LIST_LIMIT or 20)")
	listCmd.Flags().String("status", "", "Filter by status: active or ended")

	endCmd := &cobra.Command{
		Use:   "end [summary-note]",
		Short: "End the active session",
		Long:  "End the active session. A summary note, if given, is stored into memory tagged with the session id.",
		Run:   runSessionEnd,
	}

	sessionCmd.AddCommand(startCmd, insightCmd, decisionCmd, summaryCmd, listCmd, endCmd)
	RootCmd.AddCommand(sessionCmd)
}

func runSessionStart(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	id, err := s.StartSession(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("start session", err)
	}

	printOut(map[string]string{"session_id": id})
}

func runSessionInsight(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ordinal, err := s.RecordInsight(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("record insight", err)
	}

	printOut(map[string]int{"ordinal": ordinal})
}

func runSessionDecision(cmd *cobra.Command, args []string) {
	reasoning, _ := cmd.Flags().GetString("reasoning")
	altsStr, _ := cmd.Flags().GetString("alternatives")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ordinal, err := s.RecordDecision(cmd.Context(), strings.Join(args, " "), reasoning, splitTags(altsStr))
	if err != nil {
		exitErr("record decision", err)
	}

	printOut(map[string]int{"ordinal": ordinal})
}

func runSessionSummary(cmd *cobra.Command, args []string) {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	summary, err := s.SessionSummary(cmd.Context(), id)
	if err != nil {
		exitErr("session summary", err)
	}

	printOut(summary)
}

func runSessionList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	if limit <= 0 {
		limit = loadConfig().SessionListLimit
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.ListSessions(cmd.Context(), store.ListSessionsParams{
		Limit:  limit,
		Status: model.SessionStatus(status),
	})
	if err != nil {
		exitErr("list sessions", err)
	}

	if len(sessions) == 0 {
		fmt.Println("[]")
		return
	}
	printOut(sessions)
}

func runSessionEnd(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	summary, err := s.EndSession(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("end session", err)
	}

	printOut(summary)
}
