package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// VersionsResult is the JSON payload of the versions command.
type VersionsResult struct {
	Archive  string   `json:"archive"`
	TimeKind string   `json:"time_kind"`
	Versions []string `json:"versions"`
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "versions <archive>",
		Short:         "List the distinct versions recorded in an archive",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runVersions(opts *RootOptions, cmd *cobra.Command, name string) error {
	formatter := newFormatter(opts, cmd)

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	a, err := s.LoadArchive(ctx, name)
	if err != nil {
		return fail(formatter, err)
	}

	timeKind := a.TimeKind()
	versions := a.VersionsObserved()
	rendered := make([]string, len(versions))
	for i, v := range versions {
		rendered[i] = timeKind.Format(v)
	}

	result := VersionsResult{Archive: name, TimeKind: string(timeKind), Versions: rendered}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(strings.Join(rendered, "\n"))
}
