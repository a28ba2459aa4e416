package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/extsql/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Archive string
	Show    string // version whose script is printed
}

// HistoryEntry is one archived version in the history listing.
type HistoryEntry struct {
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`
	Descriptors int    `json:"descriptors"`
	Seq         int64  `json:"seq"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <extension>",
		Short: "List archived scripts of an extension",
		Long: `List the versions of an extension saved to the archive, oldest first.

With --show VERSION the archived script of that version is printed
instead.

Examples:
  extsql history demo --archive scripts.db
  extsql history demo --archive scripts.db --show 0.1.0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "path to the archive database")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print the script archived for this version")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, extension string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	archive := firstNonEmpty(opts.Archive, opts.Config.Archive)
	if archive == "" {
		return formatter.Fail(NewExitError(ExitCommandError, "no archive given"),
			ErrCodeArchive, "no archive given: pass --archive or set archive in the config file", nil)
	}

	st, err := store.Open(archive)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "opening archive", err), ErrCodeArchive, err.Error(), nil)
	}
	defer st.Close()

	if opts.Show != "" {
		return showVersion(ctx, st, formatter, extension, opts.Show)
	}

	artifacts, err := st.List(ctx, extension)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "reading archive", err), ErrCodeArchive, err.Error(), nil)
	}

	entries := make([]HistoryEntry, len(artifacts))
	for i, a := range artifacts {
		entries[i] = HistoryEntry{
			Version:     a.Version,
			Fingerprint: a.Fingerprint,
			Descriptors: a.NodeCount,
			Seq:         a.Seq,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintf(w, "No archived scripts for %s.\n", extension)
		return nil
	}
	for _, e := range entries {
		fp := e.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(w, "%4d  %-12s  %s  %d descriptor(s)\n", e.Seq, e.Version, fp, e.Descriptors)
	}
	return nil
}

func showVersion(ctx context.Context, st *store.Store, formatter *OutputFormatter, extension, version string) error {
	a, err := st.Get(ctx, extension, version)
	if errors.Is(err, store.ErrNotFound) {
		msg := fmt.Sprintf("%s %s is not archived", extension, version)
		return formatter.Fail(NewExitError(ExitCommandError, msg), ErrCodeNotFound, msg, nil)
	}
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "reading archive", err), ErrCodeArchive, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(a)
	}
	_, err = fmt.Fprint(formatter.Writer, a.Script)
	return err
}
