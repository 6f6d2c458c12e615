package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/fitcoach/internal/guide"
	"github.com/mithrel/fitcoach/internal/present"
)

const defaultPager = "less -FRSX"

// presentOptions builds render options from the resolved output config.
func presentOptions(cmd *cobra.Command, noHeaders bool) (present.Options, error) {
	app := getApp(cmd)
	raw := app.Cfg.GetString("output")
	mode, ok := present.ParseMode(raw)
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", raw)
	}
	return present.Options{
		Mode:    mode,
		Headers: !noHeaders,
		Guide:   guide.Options{Escape: app.Cfg.GetBool("guide.escape")},
	}.Resolve(cmd.OutOrStdout()), nil
}

// withPager pipes list output through $PAGER when stdout is a terminal.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func addHeaderFlag(cmd *cobra.Command, noHeaders *bool) {
	cmd.Flags().BoolVar(noHeaders, "noheaders", false, "hide column headers (plain)")
}
