package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Owner   string
	Session string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check stored ratings against a history replay",
		Long: `Replay the session's full vote history and compare the result with the
stored rating records.

Exit code 0 means the materialized ratings match their event log; exit
code 1 means drift was found, which indicates a bug in the engine rather
than something to repair in place.

Example:
  photoduel verify --owner alice --session s1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, cleanup, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			drifts, err := eng.Verify(cmd.Context(), opts.Owner, opts.Session)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "verify failed", err)
			}

			if len(drifts) == 0 {
				return out.Success("ratings match the vote history")
			}

			var b strings.Builder
			for _, d := range drifts {
				fmt.Fprintf(&b, "photo %s: stored %d (%dW/%dL) vs replayed %d (%dW/%dL)\n",
					d.PhotoID,
					d.Stored.Rating, d.Stored.Wins, d.Stored.Losses,
					d.Replayed.Rating, d.Replayed.Wins, d.Replayed.Losses)
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return WrapExitError(ExitFailure, fmt.Sprintf("%d photos drifted from their history", len(drifts)), nil)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
