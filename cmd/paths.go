package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput represents the directories and files used by cyclenext.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	ConfigFile string `json:"config_file,omitempty"`
	StateDir   string `json:"state_dir"`
	LogDir     string `json:"log_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by cyclenext",
		Long: `Print the paths used by cyclenext as JSON.

- config_dir: where cyclenext.yml is looked up
- config_file: the config file in effect, if any
- state_dir: runtime state
- log_dir: daily log files, one per component

CYCLENEXT_HOME moves everything under one directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				ConfigFile: config.ResolvePath(""),
				StateDir:   paths.StateDir(),
				LogDir:     paths.LogDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
