package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/photoduel/internal/engine"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Owner string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a battle session",
		Long: `Create a new battle session for an owner.

Each owner has exactly one session. The command prints the session id and
the secret key for the shareable results link.

Example:
  photoduel create --db ./photoduel.db --owner alice`,
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
			sess, err := eng.CreateBattle(cmd.Context(), opts.Owner)
			if err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "create failed", err)
			}
			return out.Success(fmt.Sprintf("session %s created (secret key %s)", sess.ID, sess.SecretKey))
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Owner     string
	Session   string
	URL       string
	File      string
	LibraryID string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a photo to a battle",
		Long: `Add a photo contestant to a battle session.

The photo starts at the initial rating with zero votes. Either --url or
--file must be given; --file copies the file into the blob directory.

Example:
  photoduel add --owner alice --session s1 --url https://photos.example/1.jpg
  photoduel add --owner alice --session s1 --file ./cat.jpg`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	cmd.Flags().StringVar(&opts.URL, "url", "", "photo URL")
	cmd.Flags().StringVar(&opts.File, "file", "", "photo file to upload")
	cmd.Flags().StringVar(&opts.LibraryID, "library", "", "gallery library id to link")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command) error {
	if (opts.URL == "") == (opts.File == "") {
		return WrapExitError(ExitCommandError, "exactly one of --url or --file is required", nil)
	}

	eng, blobs, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	params := engine.AddPhotoParams{URL: opts.URL, LibraryID: opts.LibraryID}
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open photo file", err)
		}
		defer f.Close()
		path, err := blobs.Store(cmd.Context(), f)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to store photo file", err)
		}
		params.StoragePath = path
		params.URL = "/blobs/" + path
	}

	photo, err := eng.AddPhoto(cmd.Context(), opts.Owner, opts.Session, params)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "add failed", err)
	}
	return out.Success(fmt.Sprintf("photo %s added at rating %d", photo.ID, photo.Rating))
}

// RemoveOptions holds flags for the remove command.
type RemoveOptions struct {
	*RootOptions
	Owner   string
	Session string
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove <photo-id>",
		Short: "Remove a photo from a battle",
		Long: `Remove a photo outright.

Unlike merge, removal leaves the photo's past votes dangling: they stay in
the history but stop affecting other photos. Use merge when two entries
are the same photo.

Example:
  photoduel remove --owner alice --session s1 photo-42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, cleanup, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if err := eng.DeletePhoto(cmd.Context(), opts.Owner, opts.Session, args[0]); err != nil {
				_ = out.Error(err)
				return WrapExitError(ExitFailure, "remove failed", err)
			}
			return out.Success(fmt.Sprintf("photo %s removed", args[0]))
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
