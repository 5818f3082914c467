package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"broker_importer/internal/feature/ledger/adapters"
	"broker_importer/internal/feature/ledger/usecase"
	"broker_importer/internal/platform/db"
)

type importCmd struct {
	document string
	start    string
	end      string
	dryRun   bool
	debug    bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import broker operations into the ledger document" }
func (*importCmd) Usage() string {
	return `importer import [-document <path>] [-start <date>] [-end <date>] [-dry-run] [-debug] [all]

  Reconciles every broker operation in the window into the ledger document.
  Already-recorded operations are skipped with a warning. Any error aborts
  the run and rolls back all staged writes; with -dry-run the run is always
  rolled back.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.document, "document", "", "ledger document path (default: $LEDGER_DOCUMENT)")
	f.StringVar(&c.start, "start", "", "start of the import window (default: 90 days ago)")
	f.StringVar(&c.end, "end", "", "end of the import window (default: now)")
	f.BoolVar(&c.dryRun, "dry-run", false, "stage everything, then roll back instead of committing")
	f.BoolVar(&c.debug, "debug", false, "enable debug logging")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	setupLogging(c.debug)

	if f.NArg() > 1 || (f.NArg() == 1 && f.Arg(0) != "all") {
		fmt.Fprintln(os.Stderr, "the only supported collection is all")
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	document := cfg.Document
	if c.document != "" {
		document = c.document
	}
	if document == "" {
		fmt.Fprintln(os.Stderr, "no ledger document: pass -document or set LEDGER_DOCUMENT")
		return subcommands.ExitUsageError
	}

	from, to, err := period(c.start, c.end, cfg.Location)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	feed, err := newFeed()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	gormDB, err := db.OpenDocument(document)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	store := adapters.NewLedgerStore(gormDB)

	uc := usecase.NewImportUsecase(feed, store, cfg.Names, c.dryRun)
	report, err := uc.ImportRange(ctx, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("seen %d, imported %d, duplicates %d, skipped %d, price points %d\n",
		report.Seen, report.Imported, report.Duplicates, report.Skipped, report.PricePoints)
	for _, w := range report.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if c.dryRun {
		fmt.Println("dry run: nothing was committed")
	}
	return subcommands.ExitSuccess
}
