package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/internal/project"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Group chats into projects with shared instructions",
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsShowCmd())
	cmd.AddCommand(newProjectsUpdateCmd())
	cmd.AddCommand(newProjectsDeleteCmd())

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			projects, err := a.projects.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing projects: %w", err)
			}
			if len(projects) == 0 {
				fmt.Println("No projects yet. Create one with 'parley projects create'.")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%s  %s\n", p.ID, p.Name)
			}
			return nil
		},
	}
}

func newProjectsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			instructions, _ := cmd.Flags().GetString("instructions") //nolint:errcheck
			proj, err := a.projects.Create(cmd.Context(), args[0], instructions)
			if err != nil {
				return fmt.Errorf("creating project: %w", err)
			}
			fmt.Printf("Created project %s (%s)\n", proj.Name, proj.ID)
			return nil
		},
	}

	cmd.Flags().StringP("instructions", "i", "", "System instructions for the project's chats")
	return cmd
}

func newProjectsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			proj, err := findProject(ctx, a, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Project: %s (%s)\n", proj.Name, proj.ID)
			if proj.Instructions != "" {
				fmt.Printf("Instructions: %s\n", proj.Instructions)
			}

			sessions, err := a.sessions.ListByProject(ctx, proj.ID)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			fmt.Printf("Sessions: %d\n", len(sessions))
			for _, s := range sessions {
				fmt.Printf("  %s  %s\n", s.ID, s.Title)
			}
			return nil
		},
	}
}

func newProjectsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Rename a project or change its instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			proj, err := findProject(ctx, a, args[0])
			if err != nil {
				return err
			}

			name := proj.Name
			if cmd.Flags().Changed("name") {
				name, _ = cmd.Flags().GetString("name") //nolint:errcheck
			}
			instructions := proj.Instructions
			if cmd.Flags().Changed("instructions") {
				instructions, _ = cmd.Flags().GetString("instructions") //nolint:errcheck
			}

			if err := a.projects.Update(ctx, proj.ID, name, instructions); err != nil {
				return fmt.Errorf("updating project: %w", err)
			}
			fmt.Printf("Updated project %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringP("name", "n", "", "New project name")
	cmd.Flags().StringP("instructions", "i", "", "New system instructions")
	return cmd
}

func newProjectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project, its sessions, and their messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			proj, err := findProject(ctx, a, args[0])
			if err != nil {
				return err
			}
			if err := a.projects.Delete(ctx, proj.ID); err != nil {
				return fmt.Errorf("deleting project: %w", err)
			}
			fmt.Printf("Deleted project %s\n", proj.Name)
			return nil
		},
	}
}

// findProject resolves a project by ID first, then by exact name.
func findProject(ctx context.Context, a *app, ref string) (*project.Project, error) {
	proj, err := a.projects.Get(ctx, ref)
	if err == nil {
		return proj, nil
	}
	if !errors.Is(err, project.ErrNotFound) {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	projects, err := a.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	for _, p := range projects {
		if p.Name == ref {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no project with ID or name %q", ref)
}
