package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/omnimind/internal/controller"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List or run assistant skills",
	Long: `List the skills the assistant offers, or run one.

Subcommands:
  list  List available skills (default)
  run   Run a skill with a query

Examples:
  omnimind skills
  omnimind skills run web_search "latest AI news"`,
	RunE: runSkillsList,
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available skills",
	Args:  cobra.NoArgs,
	RunE:  runSkillsList,
}

var skillsRunCmd = &cobra.Command{
	Use:   "run <skill-id> <query>",
	Short: "Run a skill with a query",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSkillsRun,
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsRunCmd)
}

func runSkillsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	skills, err := apiClient.ListSkills(ctx)
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		fmt.Fprintln(out, "No skills available.")
		return nil
	}

	fmt.Fprintf(out, "%-20s %-25s %s\n", "ID", "NAME", "DESCRIPTION")
	for _, s := range skills {
		fmt.Fprintf(out, "%-20s %-25s %s\n", s.ID, s.Name, s.Description)
	}
	return nil
}

func runSkillsRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	skillID, query := args[0], strings.Join(args[1:], " ")

	ctrl := controller.New(apiClient, controller.WithLogger(logger))
	defer ctrl.Close()

	ctrl.ExecuteSkill(ctx, skillID, query)

	s := ctrl.Snapshot()
	reply := s.Messages[len(s.Messages)-1].Content
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	if reply == controller.SkillFailureText || strings.HasPrefix(reply, controller.SkillErrorPrefix) {
		return fmt.Errorf("skill %s failed", skillID)
	}
	return nil
}
