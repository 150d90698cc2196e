package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
)

func newConfigCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage configuration",
	}
	cmd.AddCommand(newConfigShowCommand(ctx), newConfigInitCommand(), newConfigPathCommand(ctx))
	return cmd
}

func newConfigShowCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Render the resolved configuration as TOML",
		// Reads the file itself so it can report the resolved path without
		// creating directories as a side effect.
		Annotations: map[string]string{"noConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# config: %s\n", path)
			if !exists {
				fmt.Fprintln(w, "# file not found; built-in defaults shown")
			}
			encoded, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprint(w, string(encoded))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a starter configuration file",
		Annotations: map[string]string{"noConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveConfigTarget(strings.TrimSpace(targetPath))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !force {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --force to replace it)", target)
				case !os.IsNotExist(err):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(w, "Edit [paths].watch_dir to point at the folder your reader drops .url files into.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigPathCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the resolved configuration file path",
		Annotations: map[string]string{"noConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigTarget(ctx.configFlagValue())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(w, "File does not exist; built-in defaults apply.")
			}
			return nil
		},
	}
}

// resolveConfigTarget expands an explicit path or falls back to the
// platform default location.
func resolveConfigTarget(explicit string) (string, error) {
	if explicit == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	expanded, err := config.ExpandPath(explicit)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}
