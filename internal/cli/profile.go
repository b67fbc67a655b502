package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var profileJSON bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the user profile stored by the service",
	Long: `Show the user profile document kept by the assistant service.

Examples:
  omnimind profile
  omnimind profile --json`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "print raw JSON instead of YAML")
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	profile, err := apiClient.GetProfile(ctx)
	if err != nil {
		return err
	}

	if profileJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	doc := make(map[string]any, len(profile))
	for k, raw := range profile {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode profile field %s: %w", k, err)
		}
		doc[k] = v
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
