package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jotjot/internal/markup"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Count words and characters of a note",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := readInput(args)
		if err != nil {
			fatal("Failed to read note", err)
		}
		c := markup.Count(content)
		fmt.Printf("%d words\n%d characters\n", c.Words, c.Characters)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
