package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jotjot/internal/client"
	"jotjot/internal/editor"
)

var (
	serverURL  string
	sharePlain bool
	shareJSON  bool
)

const requestTimeout = 30 * time.Second

var shareCmd = &cobra.Command{
	Use:   "share [file]",
	Short: "Share a note",
	Long: `Share note HTML read from a file, or from stdin when no file is given.
With --plain the input is treated as plain text, one paragraph per line.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := readInput(args)
		if err != nil {
			fatal("Failed to read note", err)
		}
		if sharePlain {
			content = plainToHTML(content)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		res, err := client.New(server()).Create(ctx, content)
		if err != nil {
			fatal("Failed to share note", err)
		}

		if shareJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(res); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		fmt.Println(res.ShareURL)
	},
}

// readInput returns the contents of the file named in args, or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

// plainToHTML types text into an empty editor and returns its HTML.
func plainToHTML(text string) string {
	e := editor.New()
	e.InsertText(text)
	return e.HTML()
}

// server returns the API origin: the --server flag, else BASE_URL.
func server() string {
	if serverURL != "" {
		return serverURL
	}
	return cfg.BaseURL
}

func init() {
	rootCmd.AddCommand(shareCmd)
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "JotJot server URL (defaults to BASE_URL)")
	shareCmd.Flags().BoolVar(&sharePlain, "plain", false, "Treat input as plain text")
	shareCmd.Flags().BoolVar(&shareJSON, "json", false, "Output in JSON format")
}
