package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/letterstacks/internal/api/request"
	"github.com/mcoot/letterstacks/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
		Long: `Create and play a session on the server.

'session new' remembers the session and its token; the other commands act on
that session unless --session is given.`,
	}
	cmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session ID (default: the current session)")

	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionGetCmd(&sessionID))
	cmd.AddCommand(newSessionSelectCmd(&sessionID))
	cmd.AddCommand(newSessionClearCmd(&sessionID))
	cmd.AddCommand(newSessionSubmitCmd(&sessionID))
	cmd.AddCommand(newSessionDropCmd(&sessionID))
	cmd.AddCommand(newSessionResetCmd(&sessionID))
	cmd.AddCommand(newSessionSettingsCmd(&sessionID))
	cmd.AddCommand(newSessionEndCmd(&sessionID))
	cmd.AddCommand(newSessionHintCmd(&sessionID))

	return cmd
}

func sessionPath(id, suffix string) string {
	return fmt.Sprintf("/api/v1/sessions/%s%s", id, suffix)
}

func newSessionNewCmd() *cobra.Command {
	var (
		profile string
		level   int
		ceiling int
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateSessionRequest{Profile: profile}
			if cmd.Flags().Changed("level") {
				req.Level = &level
			}
			if cmd.Flags().Changed("ceiling") {
				req.StackCeiling = &ceiling
			}

			var result response.SessionResponse
			if err := client.Post(cmd.Context(), "/api/v1/sessions", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveState(State{SessionID: string(result.Session.ID), Token: result.Token}); err != nil {
				return fmt.Errorf("save state: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile whose settings and scores to use")
	cmd.Flags().IntVar(&level, "level", 0, "Level 1-25 (default: the profile's level)")
	cmd.Flags().IntVar(&ceiling, "ceiling", 0, "Stack ceiling 5-10 (default: the profile's ceiling)")

	return cmd
}

// sessionAction builds a command that calls one session endpoint and prints
// the resulting session
func sessionAction(use, short, method, suffix string, sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSession(*sessionID)
			if err != nil {
				return err
			}

			var result response.SessionResponse
			if err := client.Do(cmd.Context(), method, sessionPath(id, suffix), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd(sessionID *string) *cobra.Command {
	return sessionAction("get", "Show the session", "GET", "", sessionID)
}

func newSessionClearCmd(sessionID *string) *cobra.Command {
	return sessionAction("clear", "Deselect every cell", "DELETE", "/selection", sessionID)
}

func newSessionDropCmd(sessionID *string) *cobra.Command {
	return sessionAction("drop", "Land one pending letter now", "POST", "/drop", sessionID)
}

func newSessionResetCmd(sessionID *string) *cobra.Command {
	return sessionAction("reset", "Restart the session with a fresh board", "POST", "/reset", sessionID)
}

func newSessionEndCmd(sessionID *string) *cobra.Command {
	return sessionAction("end", "End the session without recording a score", "DELETE", "", sessionID)
}

func newSessionSelectCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "select <cell>...",
		Short: "Toggle cells in order",
		Long: `Toggle one or more cells. Selecting a cell appends its top letter to the
word; selecting it again removes it. Cells are numbered row by row from 0.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cells := make([]int, len(args))
			for i, arg := range args {
				cell, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid cell %q: must be a number", arg)
				}
				cells[i] = cell
			}

			id, err := resolveSession(*sessionID)
			if err != nil {
				return err
			}

			var result response.SessionResponse
			for _, cell := range cells {
				c := cell
				if err := client.Post(cmd.Context(), sessionPath(id, "/select"), request.SelectRequest{Cell: &c}, &result); err != nil {
					return err
				}
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionSubmitCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit the selected word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSession(*sessionID)
			if err != nil {
				return err
			}

			var result response.SubmitResponse
			if err := client.Post(cmd.Context(), sessionPath(id, "/submit"), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionSettingsCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "settings <level> <ceiling>",
		Short: "Change settings and restart the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseSettingsArgs(args)
			if err != nil {
				return err
			}

			id, err := resolveSession(*sessionID)
			if err != nil {
				return err
			}

			var result response.SessionResponse
			if err := client.Put(cmd.Context(), sessionPath(id, "/settings"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSessionHintCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hint",
		Short: "Suggest a word that can be spelled now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveSession(*sessionID)
			if err != nil {
				return err
			}

			var result response.HintResponse
			if err := client.Get(cmd.Context(), sessionPath(id, "/hint"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func parseSettingsArgs(args []string) (request.SettingsRequest, error) {
	level, err := strconv.Atoi(args[0])
	if err != nil {
		return request.SettingsRequest{}, fmt.Errorf("invalid level %q: must be a number", args[0])
	}
	ceiling, err := strconv.Atoi(args[1])
	if err != nil {
		return request.SettingsRequest{}, fmt.Errorf("invalid ceiling %q: must be a number", args[1])
	}
	return request.SettingsRequest{Level: level, StackCeiling: ceiling}, nil
}
