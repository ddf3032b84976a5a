package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/content-gap/internal/report"
	"github.com/sells-group/content-gap/internal/store"
)

var auditsCmd = &cobra.Command{
	Use:   "audits",
	Short: "Inspect saved content gap audits",
}

// -- audits get --

var auditsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved audit as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, _ := cmd.Flags().GetString("user-id")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		a, err := st.GetAudit(ctx, args[0], userID)
		if errors.Is(err, store.ErrNotFound) {
			return eris.Errorf("audit %s not found for user %s", args[0], userID)
		}
		if err != nil {
			return eris.Wrap(err, "audits get")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	},
}

// -- audits list --

var auditsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's audits, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		userID, _ := cmd.Flags().GetString("user-id")
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		audits, err := st.ListAudits(ctx, userID, limit)
		if err != nil {
			return eris.Wrap(err, "audits list")
		}
		if len(audits) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No audits found.")
			return nil
		}
		return report.WriteAudits(cmd.OutOrStdout(), audits)
	},
}

func init() {
	for _, c := range []*cobra.Command{auditsGetCmd, auditsListCmd} {
		c.Flags().String("user-id", "", "owner of the audits")
		_ = c.MarkFlagRequired("user-id")
	}
	auditsListCmd.Flags().Int("limit", 50, "maximum audits to list")

	auditsCmd.AddCommand(auditsGetCmd, auditsListCmd)
	rootCmd.AddCommand(auditsCmd)
}
