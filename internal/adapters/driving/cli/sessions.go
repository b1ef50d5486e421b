package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	sessionsLimit  int
	sessionsOffset int
	sessionsJSON   bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage persisted chat sessions",
	Long: `List, inspect and continue persisted chat sessions.

Each session keeps its own conversation history; sending a message to a
session resumes that conversation where it left off.`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE:  runSessionsList,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a new session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsNew,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session's messages with citations",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsSendCmd = &cobra.Command{
	Use:   "send [session-id] [message]",
	Short: "Send a message within a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsSend,
}

func init() {
	sessionsCmd.PersistentFlags().IntVarP(&sessionsLimit, "limit", "n", 100, "maximum number of entries")
	sessionsCmd.PersistentFlags().IntVar(&sessionsOffset, "offset", 0, "number of entries to skip")
	sessionsCmd.PersistentFlags().BoolVar(&sessionsJSON, "json", false, "output as JSON")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsSendCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.ListSessions(cmd.Context(), sessionsOffset, sessionsLimit)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if sessionsJSON {
		return outputJSON(cmd, sessions)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions yet. Create one with \"germano sessions new\".")
		return nil
	}

	for _, s := range sessions {
		cmd.Printf("  %s  %s  (%s)\n", s.ID, s.Title, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	title := ""
	if len(args) == 1 {
		title = args[0]
	}

	session, err := sessionService.CreateSession(cmd.Context(), title)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	if sessionsJSON {
		return outputJSON(cmd, session)
	}

	cmd.Printf("Created session %s (%s)\n", session.ID, session.Title)
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessionID := args[0]
	session, err := sessionService.GetSession(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	messages, err := sessionService.ListMessages(cmd.Context(), sessionID, sessionsOffset, sessionsLimit)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	if sessionsJSON {
		return outputJSON(cmd, messages)
	}

	cmd.Printf("%s (%s)\n", session.Title, session.ID)
	cmd.Println()
	for _, m := range messages {
		cmd.Printf("[%s] %s\n", m.Role, m.Content)
		for _, c := range m.Citations {
			cmd.Printf("    cite %q -> docs %s\n", c.Text, strings.Join(c.DocumentIDs, ", "))
		}
		cmd.Println()
	}
	return nil
}

func runSessionsSend(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	msg, err := sessionService.SendMessage(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	if sessionsJSON {
		return outputJSON(cmd, msg)
	}

	cmd.Println(msg.Content)
	if len(msg.Citations) > 0 {
		cmd.Println()
		cmd.Println("Citations:")
		for i, c := range msg.Citations {
			cmd.Printf("  [%d] %q (docs %s)\n", i+1, c.Text, strings.Join(c.DocumentIDs, ", "))
		}
	}
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
