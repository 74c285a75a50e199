package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"khata/internal/domain"
	"khata/internal/repository/postgres"
	"khata/internal/service"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	Fix       bool
	CompanyID string
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare account balances with their ledgers",
		Long: `Recompute every bank and cash account's balance from its opening balance
and transactions, and report accounts whose stored balance has drifted.

With --fix the stored balance is reset to the ledger value.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var companyID *uuid.UUID
			if opts.CompanyID != "" {
				id, err := uuid.Parse(opts.CompanyID)
				if err != nil {
					return fmt.Errorf("invalid --company %q: %w", opts.CompanyID, err)
				}
				companyID = &id
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(&cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			ledger := service.NewLedgerService(
				postgres.NewTxManager(db),
				postgres.NewBankAccountRepo(db),
				postgres.NewTransactionRepo(db),
				postgres.NewReportRepo(db),
				cfg.Idempotency.TTL,
			)
			return runReconcile(cmd.Context(), ledger, companyID, opts.Fix, rootOpts.Format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "reset drifted balances to the ledger value")
	cmd.Flags().StringVar(&opts.CompanyID, "company", "", "limit to one company (UUID)")

	return cmd
}

func runReconcile(ctx context.Context, ledger service.LedgerService, companyID *uuid.UUID, fix bool, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := ledger.Reconcile(ctx, companyID, fix)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return writeReconciliation(out, rows, fix, format)
}

func writeReconciliation(out io.Writer, rows []domain.ReconciliationRow, fixed bool, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Fixed    bool                       `json:"fixed"`
			Drifted  int                        `json:"drifted"`
			Accounts []domain.ReconciliationRow `json:"accounts"`
		}{Fixed: fixed, Drifted: len(rows), Accounts: rows})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "all account balances match their ledgers")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tNAME\tSTORED\tLEDGER\tDRIFT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.AccountID, r.DisplayName,
			r.CurrentBalance.StringFixed(2), r.ExpectedBalance.StringFixed(2), r.Drift.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	verb := "found"
	if fixed {
		verb = "fixed"
	}
	_, err := fmt.Fprintf(out, "%s %d drifted account(s)\n", verb, len(rows))
	return err
}
