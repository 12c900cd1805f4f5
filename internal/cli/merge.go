package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/photoduel/internal/battle"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Owner   string
	Session string
	Retries int
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <target-id> <merged-id>",
		Short: "Merge two photos into one identity",
		Long: `Merge the second photo into the first.

Every vote either photo ever received is re-attributed to the target and
all ratings are recomputed by replaying the full vote history. If a vote
lands mid-merge the engine reports a conflict; the command retries from
scratch a few times before giving up.

Example:
  photoduel merge --owner alice --session s1 photo-1 photo-7`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "merge attempts before giving up on conflicts")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runMerge(opts *MergeOptions, targetID, mergedID string, cmd *cobra.Command) error {
	eng, _, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	// The coordinator makes a single attempt; the retry loop lives here,
	// at the caller, as the conflict contract intends.
	var sess battle.Session
	for attempt := 1; ; attempt++ {
		sess, err = eng.MergePhotos(cmd.Context(), opts.Owner, opts.Session, targetID, mergedID)
		if err == nil {
			break
		}
		if battle.IsConflict(err) && attempt < opts.Retries {
			continue
		}
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "merge failed", err)
	}

	return out.Success(fmt.Sprintf("merged %s into %s; %d photos remain", mergedID, targetID, len(sess.Photos)))
}
