package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/extsql/internal/render"
	"github.com/roach88/extsql/internal/store"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Output  string // output file path
	Archive string // archive database path
	Version string // overrides extension.version
}

// SchemaResult is the JSON payload of the schema command.
type SchemaResult struct {
	Extension   string         `json:"extension"`
	Version     string         `json:"version,omitempty"`
	Fingerprint string         `json:"fingerprint"`
	Order       []string       `json:"order"`
	Output      string         `json:"output,omitempty"`
	Script      string         `json:"script,omitempty"`
	Archived    *ArchiveStatus `json:"archived,omitempty"`
}

// ArchiveStatus reports what the archive did with a rendered script.
type ArchiveStatus struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Created bool   `json:"created"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema [manifest]",
		Short: "Render the installation script",
		Long: `Build the entity graph from a descriptor manifest and render the
installation script.

The manifest is a CUE package directory, a .cue file or a YAML file. When
no manifest is given, the one named in the config file is used. The script
is written to stdout unless --output is set.

With --archive the script is also saved to a SQLite archive under the
extension version. Saving an unchanged manifest again is a no-op; saving
a changed manifest under a version that is already archived fails.

Examples:
  extsql schema ./sql
  extsql schema manifest.yaml -o demo--0.1.0.sql
  extsql schema ./sql --archive scripts.db --version 0.2.0`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "save the script to this archive database")
	cmd.Flags().StringVar(&opts.Version, "version", "", "extension version (default from the manifest)")

	return cmd
}

func runSchema(ctx context.Context, opts *SchemaOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	path, err := resolveManifest(opts.RootOptions, args)
	if err != nil {
		return buildFailure(formatter, err)
	}

	build, err := LoadAndBuild(path)
	if err != nil {
		return buildFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d descriptor(s) from %s", len(build.Manifest.Descriptors), path)

	script := render.SQL(build.Plan, render.Options{Header: opts.Config.Header})

	version := opts.Version
	if version == "" {
		version = build.Manifest.Extension.Version
	}
	result := SchemaResult{
		Extension:   build.Manifest.Extension.Name,
		Version:     version,
		Fingerprint: build.Fingerprint,
		Order:       build.Plan.Names(),
		Output:      firstNonEmpty(opts.Output, opts.Config.Output),
	}

	slog.Info("script rendered",
		"extension", result.Extension,
		"descriptors", len(result.Order),
		"fingerprint", result.Fingerprint)

	if result.Output != "" {
		if err := os.WriteFile(result.Output, []byte(script), 0644); err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "writing output file", err),
				ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if archive := firstNonEmpty(opts.Archive, opts.Config.Archive); archive != "" {
		status, err := archiveScript(ctx, archive, build, version, script)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "archiving script", err), ErrCodeArchive, err.Error(), nil)
		}
		result.Archived = status
	}

	if opts.Format == "json" {
		if result.Output == "" {
			result.Script = script
		}
		return formatter.Success(result)
	}

	if result.Output == "" {
		_, err := fmt.Fprint(formatter.Writer, script)
		return err
	}

	fmt.Fprintf(formatter.Writer, "✓ Rendered %d descriptor(s) to %s\n", len(result.Order), result.Output)
	if result.Archived != nil {
		if result.Archived.Created {
			fmt.Fprintf(formatter.Writer, "Archived %s %s (seq %d)\n", result.Extension, version, result.Archived.Seq)
		} else {
			fmt.Fprintf(formatter.Writer, "%s %s already archived (seq %d)\n", result.Extension, version, result.Archived.Seq)
		}
	}
	return nil
}

// archiveScript saves the rendered script under (extension, version).
func archiveScript(ctx context.Context, path string, build *BuildResult, version, script string) (*ArchiveStatus, error) {
	if version == "" {
		return nil, fmt.Errorf("extension version is required to archive: set extension.version or pass --version")
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	saved, created, err := st.Save(ctx, store.Artifact{
		Extension:   build.Manifest.Extension.Name,
		Version:     version,
		Fingerprint: build.Fingerprint,
		Script:      script,
		Descriptors: build.Manifest.Descriptors,
		NodeCount:   len(build.Plan.Entities()),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("script archived",
		"archive", path,
		"version", version,
		"seq", saved.Seq,
		"created", created)

	return &ArchiveStatus{ID: saved.ID, Seq: saved.Seq, Created: created}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
