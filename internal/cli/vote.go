package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VoteOptions holds flags for the vote command.
type VoteOptions struct {
	*RootOptions
	Session string
}

// NewVoteCommand creates the vote command.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "vote <winner-id> <loser-id>",
		Short: "Record a pairwise vote",
		Long: `Record one pairwise outcome.

Both photos' ratings move through the Elo update and the vote is appended
to the session's history. Voting needs no owner identity.

Example:
  photoduel vote --session s1 photo-1 photo-2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, cleanup, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if err := eng.SubmitVote(cmd.Context(), opts.Session, args[0], args[1]); err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "vote failed", err)
			}
			return out.Success(fmt.Sprintf("vote recorded: %s beats %s", args[0], args[1]))
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

// PairOptions holds flags for the pair command.
type PairOptions struct {
	*RootOptions
	Session string
}

// NewPairCommand creates the pair command.
func NewPairCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PairOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "pair",
		Short:         "Pick the next pair to vote on",
		Example:       "  photoduel pair --session s1",
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
			left, right, err := eng.NextPair(cmd.Context(), opts.Session)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "pair failed", err)
			}
			return out.Success(fmt.Sprintf("%s vs %s", left.ID, right.ID))
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
