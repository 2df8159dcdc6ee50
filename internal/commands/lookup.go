package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/klabast/wb-services/tomme-kalender/internal/app"
	"github.com/klabast/wb-services/tomme-kalender/internal/logger"
	"github.com/klabast/wb-services/tomme-kalender/internal/render"
)

// ErrNoSchedule is returned when the address did not resolve to any collection route
var ErrNoSchedule = errors.New("no collection schedule found")

// threeMonthWidth is the terminal width needed for three months side by side
const threeMonthWidth = 3*render.WeekdayCols*3 + 2*2

// Lookup handles the lookup subcommand
func Lookup(args []string) {
	fd := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(fd)
	width := 80
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}

	if err := RunLookup(args, os.Stdout, os.Stderr, isTTY, width); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// RunLookup resolves an address and prints its calendar to stdout.
// Colour output is used only when isTTY is set.
func RunLookup(args []string, stdout, stderr io.Writer, isTTY bool, width int) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	year := fs.Int("year", 0, "Calendar year (default DEFAULT_YEAR)")
	dataFile := fs.String("data", "", "CSV data file (overrides DATA_FILE)")
	pngOut := fs.String("png", "", "Also write the calendar as PNG to this file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tomme-kalender lookup [OPTIONS] <address...>\n\n")
		fmt.Fprintf(stderr, "Prints the waste collection calendar for an address.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	address := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if address == "" {
		fs.Usage()
		return errors.New("missing address")
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if *year == 0 {
		*year = cfg.DefaultYear
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
		cfg.DatabaseURL = ""
	}

	logger.Silence()
	src, closeSource, err := app.NewSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	srv := app.NewServer(cfg, src, nil)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	lookup, err := srv.Lookup(address, *year)
	if err != nil {
		return err
	}

	if !lookup.Matched {
		fmt.Fprintf(stdout, "No property matched %q.\n", address)
		if len(lookup.Suggestions) > 0 {
			fmt.Fprintln(stdout, "Did you mean:")
			for _, c := range lookup.Suggestions {
				fmt.Fprintf(stdout, "  %-40s %3d\n", c.Record.Name, c.Score)
			}
		}
		return ErrNoSchedule
	}

	fmt.Fprintf(stdout, "Matched: %s (score %d)\n", lookup.MatchedName, lookup.Score)
	for _, w := range lookup.Warnings {
		fmt.Fprintf(stderr, "warning: route code %q skipped: %s\n", w.Record.RouteCode, w.Error)
	}
	if !lookup.Found() {
		return fmt.Errorf("%w: %s", ErrNoSchedule, lookup.Reason)
	}
	fmt.Fprintln(stdout)

	opts := render.TextOptions{Color: isTTY, MonthsPerRow: 1}
	if width >= threeMonthWidth {
		opts.MonthsPerRow = 3
	}
	if err := render.WriteText(stdout, lookup.Calendar, opts); err != nil {
		return err
	}

	if *pngOut != "" {
		f, err := os.Create(*pngOut)
		if err != nil {
			return err
		}
		if err := render.WritePNG(f, lookup.Calendar); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nWrote %s\n", *pngOut)
	}
	return nil
}
