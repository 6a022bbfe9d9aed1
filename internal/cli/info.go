package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/ports/internal/output"
	"github.com/lu-zhengda/ports/internal/snapshot"
)

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <port>",
		Short: "Detailed info about the processes listening on a port",
		Long: `Display detailed information about every process listening on the
specified port. Excluded process names from the config file are still shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, opts *options, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid port number %q", arg)
	}
	portNum, err := validatePort(n)
	if err != nil {
		return err
	}

	snap, err := snapshot.Take(cmd.Context(), opts.snapshotOptions(snapshot.Filter{Port: portNum}, opts.logger))
	if err != nil {
		return err
	}

	if len(snap.Entries) == 0 {
		return fmt.Errorf("nothing is listening on port %d", portNum)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return output.RenderJSON(out, snap)
	}
	return output.RenderDetail(out, snap.Entries, output.DetailOptions{
		Color: colorFor(out, opts.cfg.ColorEnabled, opts.noColor),
	})
}
