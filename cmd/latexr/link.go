package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/latexr/internal/clipboard"
	"github.com/csheth/latexr/internal/share"
)

var (
	linkText string
	linkCopy bool
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print the share link for a formula",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url := share.BuildURL(cfg.ShareBaseURL, linkText)
		fmt.Fprintln(cmd.OutOrStdout(), url)
		if linkCopy {
			if err := clipboard.NewSystem(clipboard.Config{}).WriteText(url); err != nil {
				return fmt.Errorf("copy link: %w", err)
			}
		}
		return nil
	},
}

func init() {
	linkCmd.Flags().StringVarP(&linkText, "text", "t", "", "LaTeX markup to share")
	linkCmd.Flags().BoolVar(&linkCopy, "copy", false, "also copy the link to the clipboard")
	_ = linkCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(linkCmd)
}
