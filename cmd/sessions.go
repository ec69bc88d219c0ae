package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/internal/message"
	"github.com/parley-ai/parley/internal/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and manage chat sessions",
	}

	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsNewCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())

	return cmd
}

func newSessionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			projectRef, _ := cmd.Flags().GetString("project") //nolint:errcheck
			var sessions []*session.Session
			if projectRef != "" {
				proj, err := findProject(ctx, a, projectRef)
				if err != nil {
					return err
				}
				sessions, err = a.sessions.ListByProject(ctx, proj.ID)
				if err != nil {
					return fmt.Errorf("listing sessions: %w", err)
				}
			} else {
				sessions, err = a.sessions.List(ctx)
				if err != nil {
					return fmt.Errorf("listing sessions: %w", err)
				}
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions yet. Run 'parley' to start one.")
				return nil
			}
			for _, s := range sessions {
				marker := ""
				if s.ProjectID != "" {
					marker = " [project]"
				}
				fmt.Printf("%s  %s  %s%s\n",
					s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.Title, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringP("project", "p", "", "Only sessions of this project (ID or name)")
	return cmd
}

func newSessionsNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a session without entering the chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			projectRef, _ := cmd.Flags().GetString("project") //nolint:errcheck
			projectID := ""
			if projectRef != "" {
				proj, err := findProject(ctx, a, projectRef)
				if err != nil {
					return err
				}
				projectID = proj.ID
			}

			sess, err := a.sessions.Create(ctx, projectID)
			if err != nil {
				return fmt.Errorf("creating session: %w", err)
			}
			fmt.Printf("Created session %s\n", sess.ID)
			fmt.Printf("Resume it with: parley --session %s\n", sess.ID)
			return nil
		},
	}

	cmd.Flags().StringP("project", "p", "", "Create the session under a project (ID or name)")
	return cmd
}

func newSessionsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			sess, err := a.sessions.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading session: %w", err)
			}
			msgs, err := a.messages.GetBySession(ctx, sess.ID)
			if err != nil {
				return fmt.Errorf("loading messages: %w", err)
			}

			plain, _ := cmd.Flags().GetBool("plain") //nolint:errcheck
			out, err := renderTranscript(sess, msgs, plain)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().Bool("plain", false, "Skip markdown rendering")
	return cmd
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.sessions.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting session: %w", err)
			}
			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}
}

// renderTranscript lays a session's history out as markdown and renders it
// for the terminal unless plain output was asked for.
func renderTranscript(sess *session.Session, msgs []*message.Message, plain bool) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sess.Title)
	for _, m := range msgs {
		speaker := "You"
		if m.Role == message.RoleModel {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", speaker, m.Content)
	}

	if plain {
		return b.String(), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("building renderer: %w", err)
	}
	out, err := renderer.Render(b.String())
	if err != nil {
		return "", fmt.Errorf("rendering transcript: %w", err)
	}
	return out, nil
}
