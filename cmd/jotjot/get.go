package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jotjot/internal/client"
	"jotjot/internal/editor"
)

var getText bool

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print a shared note",
	Long:  `Fetch a shared note by its ID. Prints the stored HTML by default, or its text with --text.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		content, err := client.New(server()).Get(ctx, args[0])
		if err != nil {
			fatal("Error reading note", err)
		}

		if getText {
			doc, err := editor.Parse(content)
			if err != nil {
				fatal("Error parsing note", err)
			}
			fmt.Println(doc.Text())
			return
		}
		fmt.Println(content)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getText, "text", false, "Print plain text instead of HTML")
}
