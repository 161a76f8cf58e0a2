package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview [content]",
	Short: "Render a link preview image",
	Long:  `Render the 1200x630 link preview card for the given content, or stdin, into a PNG file.`,
	Run: func(cmd *cobra.Command, args []string) {
		content := strings.Join(args, " ")
		if len(args) == 0 {
			in, err := readInput(nil)
			if err != nil {
				fatal("Failed to read content", err)
			}
			content = in
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		png, err := newRenderer(cfg, log).Render(ctx, content)
		if err != nil {
			fatal("Failed to generate image", err)
		}
		if err := os.WriteFile(previewOut, png, 0o644); err != nil {
			fatal("Failed to write image", err)
		}
		log.WithField("file", previewOut).Info("Preview written")
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "preview.png", "Output PNG file")
}
