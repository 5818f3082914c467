package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"broker_importer/internal/platform/externalapi/tinkoff"
)

type printCmd struct {
	start string
	end   string
	debug bool
}

func (*printCmd) Name() string     { return "print" }
func (*printCmd) Synopsis() string { return "print a broker collection without touching the ledger" }
func (*printCmd) Usage() string {
	return `importer print [-start <date>] [-end <date>] <accounts|portfolio|operations|all>

  Fetches a collection from the broker API and prints it to stdout.
  Dates apply to operations only and accept 2006-01-02 or RFC 3339.
`
}

func (p *printCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "start", "", "start of the operations window (default: 90 days ago)")
	f.StringVar(&p.end, "end", "", "end of the operations window (default: now)")
	f.BoolVar(&p.debug, "debug", false, "enable debug logging")
}

func (p *printCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	setupLogging(p.debug)

	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one collection: accounts, portfolio, operations or all")
		return subcommands.ExitUsageError
	}
	collection := f.Arg(0)
	switch collection {
	case "accounts", "portfolio", "operations", "all":
	default:
		fmt.Fprintf(os.Stderr, "unknown collection %q\n", collection)
		return subcommands.ExitUsageError
	}

	// Unlike import, print needs no ledger configuration beyond the
	// timezone for the operations window.
	loc, err := loadLocation()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	feed, err := newFeed()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if collection == "accounts" || collection == "all" {
		if err := p.printAccounts(ctx, feed); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if collection == "portfolio" || collection == "all" {
		if err := p.printPortfolio(ctx, feed); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if collection == "operations" || collection == "all" {
		if err := p.printOperations(ctx, feed, loc); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func (p *printCmd) printAccounts(ctx context.Context, feed *tinkoff.TinkoffFeed) error {
	accounts, err := feed.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		fmt.Printf("%s\t%s\n", a.ID, a.Type)
	}
	return nil
}

func (p *printCmd) printPortfolio(ctx context.Context, feed *tinkoff.TinkoffFeed) error {
	positions, err := feed.Portfolio(ctx)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\t%s\n",
			pos.FIGI, pos.Ticker, pos.Kind, pos.Currency, pos.Balance, pos.Name)
	}
	return nil
}

func (p *printCmd) printOperations(ctx context.Context, feed *tinkoff.TinkoffFeed, loc *time.Location) error {
	from, to, err := period(p.start, p.end, loc)
	if err != nil {
		return err
	}
	accounts, err := feed.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		ops, err := feed.Operations(ctx, a.ID, from, to)
		if err != nil {
			return err
		}
		for _, op := range ops {
			fmt.Printf("%s\t%s\t%s\t%s\t%s %s\n",
				a.ID, op.Date.Format("2006-01-02"), op.Type, op.Status, op.Payment, op.Currency)
		}
	}
	return nil
}
