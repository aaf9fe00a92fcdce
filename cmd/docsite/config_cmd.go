package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/docsite/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage docsite configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.ShowConfig())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print path to config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := config.ContentRoot()
			if root == "" {
				return config.ErrNoRoot
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFilePath(root))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := config.ContentRoot()
			if root == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = cwd
			}
			path := config.ConfigFilePath(root)
			if _, err := os.Stat(path); err == nil && !force {
				return userError("Config already exists: "+path, "Use --force to overwrite it")
			}
			if err := config.GenerateConfig(root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open config file in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := config.ContentRoot()
			if root == "" {
				return config.ErrNoRoot
			}
			configPath := config.ConfigFilePath(root)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file found. Generating default...")
				if err := config.GenerateConfig(root); err != nil {
					return err
				}
			}
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opening %s in %s...\n", filepath.Base(configPath), editor)
			return runEditor(editor, configPath)
		},
	})

	return cmd
}

func runEditor(editor, path string) error {
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
