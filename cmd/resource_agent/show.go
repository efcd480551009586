package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the last persisted bundle of a user as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			bundle, err := a.service.Fetch(cmd.Context(), user)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(bundle); err != nil {
				return fmt.Errorf("failed to encode bundle: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "User UUID or email")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
