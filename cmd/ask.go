package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridvolt/nfg-cli/internal/model"
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Answer one natural-language query and print the response as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		resp := env.Orchestrator.AnswerQuery(cmd.Context(), strings.Join(args, " "))
		return printResponse(resp)
	},
}

func printResponse(resp model.Response) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func init() {
	rootCmd.AddCommand(askCmd)
}
