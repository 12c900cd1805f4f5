package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ResultsOptions holds flags for the results command.
type ResultsOptions struct {
	*RootOptions
	Session string
	Key     string
}

// NewResultsCommand creates the results command.
func NewResultsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResultsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show battle standings",
		Long: `Show the battle standings, best rating first.

Access requires the session's secret key, the same credential embedded in
the shareable results link.

Example:
  photoduel results --session s1 --key SECRET`,
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
			standings, err := eng.Results(cmd.Context(), opts.Session, opts.Key)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "results failed", err)
			}

			if opts.Format == "json" {
				type row struct {
					ID         string `json:"id"`
					Rating     int    `json:"rating"`
					Wins       int    `json:"wins"`
					Losses     int    `json:"losses"`
					TotalVotes int    `json:"total_votes"`
				}
				rows := make([]row, len(standings))
				for i, p := range standings {
					rows[i] = row{ID: p.ID, Rating: p.Rating, Wins: p.Wins, Losses: p.Losses, TotalVotes: p.TotalVotes}
				}
				return out.Success(rows)
			}

			var b strings.Builder
			for i, p := range standings {
				fmt.Fprintf(&b, "%2d. %-36s %4d  (%dW/%dL, %d votes)\n",
					i+1, p.ID, p.Rating, p.Wins, p.Losses, p.TotalVotes)
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	cmd.Flags().StringVar(&opts.Key, "key", "", "secret key from the results link (required)")
	_ = cmd.MarkFlagRequired("session")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

// RotateOptions holds flags for the rotate command.
type RotateOptions struct {
	*RootOptions
	Owner   string
	Session string
}

// NewRotateCommand creates the rotate command.
func NewRotateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RotateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the results link secret",
		Long: `Mint a fresh secret key for the results link.

The old key stops working immediately and the expiry window restarts.

Example:
  photoduel rotate --owner alice --session s1`,
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
			sess, err := eng.RotateLink(cmd.Context(), opts.Owner, opts.Session)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "rotate failed", err)
			}
			return out.Success(fmt.Sprintf("new secret key %s (expires %s)",
				sess.SecretKey, sess.LinkExpiresAt.Format("2006-01-02")))
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
