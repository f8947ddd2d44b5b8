package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List loaded tables and their available property names",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		tables, err := env.Store.Tables(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Tables (%d):\n", len(tables))
		for _, name := range tables {
			fmt.Printf("  %s\n", name)
		}

		props, err := env.Store.ListAvailableProperties(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Properties (%d):\n", len(props))
		for _, p := range props {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
