package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"econdash/internal/chart"
	"econdash/internal/config"
	"econdash/internal/indicator"
	"econdash/internal/ratelimit"
	"econdash/internal/store"
	"econdash/internal/store/sqlite"
	"econdash/internal/summary"
	"econdash/internal/web"
	"econdash/internal/worldbank"
)

var errUsage = errors.New("invalid command line")

// app wires the provider client, summary cache and output for one process.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	out       io.Writer
	provider  *worldbank.SeriesFetcher
	summaries *summary.Cache
}

func newApp(cfg *config.Config, log zerolog.Logger, out io.Writer) *app {
	limiter := ratelimit.New()
	limiter.Set(ratelimit.APIWorldBank, cfg.WorldBankRateLimit, 1)

	provider := worldbank.New(worldbank.Config{
		BaseURL: cfg.WorldBankBaseURL,
		PerPage: cfg.WorldBankPerPage,
		Timeout: cfg.HTTPTimeout,
		Limiter: limiter,
	}, log)

	return &app{
		cfg:       cfg,
		log:       log,
		out:       out,
		provider:  provider,
		summaries: summary.NewCache(summary.New(provider, log), log),
	}
}

func (a *app) Close() error {
	return a.provider.Close()
}

// Run dispatches args[0] to a command.
func (a *app) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch {
	case cmd == "summary" && len(rest) == 1:
		return a.printSummary(ctx, rest[0])
	case cmd == "chart" && len(rest) == 3:
		return a.writeChart(ctx, rest[0], rest[1], rest[2])
	case cmd == "export" && len(rest) == 1:
		return a.export(ctx, rest[0])
	case cmd == "serve" && len(rest) == 0:
		return web.NewServer(a.cfg.HTTPAddr, a.summaries, a.log).Run(ctx)
	default:
		return fmt.Errorf("%w: %q with %d argument(s)", errUsage, cmd, len(rest))
	}
}

func (a *app) summarize(ctx context.Context, country string) (*summary.CountrySummary, error) {
	code, err := indicator.ResolveCountry(country)
	if err != nil {
		return nil, err
	}
	return a.summaries.Summarize(ctx, code), nil
}

func (a *app) printSummary(ctx context.Context, country string) error {
	sum, err := a.summarize(ctx, country)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Economic indicators for %s\n", sum.Country)
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDICATOR\tCODE\tYEARS\tLATEST\tVALUE")
	for _, ind := range sum.Indicators() {
		table, ok := sum.Get(ind.Name)
		if !ok {
			reason := "no data"
			if err := sum.Missing[ind.Name]; err != nil {
				reason = err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t%s\n", ind.Name, ind.Code, reason)
			continue
		}
		latest := table.Latest()[0]
		from, to, _ := table.YearRange()
		fmt.Fprintf(tw, "%s\t%s\t%d-%d (%d)\t%d\t%s\n",
			ind.Name, ind.Code, from, to, table.Len(), latest.Year, formatValue(latest.Value, ind.Units))
	}
	return tw.Flush()
}

func (a *app) writeChart(ctx context.Context, country, code, path string) error {
	ind, ok := indicator.ByCode(code)
	if !ok {
		return fmt.Errorf("unknown indicator %q", code)
	}
	sum, err := a.summarize(ctx, country)
	if err != nil {
		return err
	}
	table, ok := sum.Get(ind.Name)
	if !ok {
		return fmt.Errorf("no data for %s in %s", ind.Name, sum.Country)
	}

	opts := chart.DefaultOptions()
	overlay, err := chart.Build(table, ind, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := chart.Render(f, overlay, opts.Width, opts.Height); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.log.Info().Str("country", sum.Country).Str("indicator", ind.Code).
		Int("from", overlay.From).Int("to", overlay.To).Str("path", path).Msg("chart written")
	fmt.Fprintf(a.out, "Wrote %s (%s, %s %d-%d)\n", path, ind.Name, sum.Country, overlay.From, overlay.To)
	return nil
}

func (a *app) export(ctx context.Context, country string) error {
	sum, err := a.summarize(ctx, country)
	if err != nil {
		return err
	}

	var (
		archive store.Store = &store.NopStore{}
		db      *sqlite.Store
	)
	if a.cfg.SnapshotDB == "" {
		a.log.Warn().Str("country", sum.Country).Msg("SNAPSHOT_DB is not set; summary not archived")
	} else {
		if db, err = sqlite.New(a.cfg.SnapshotDB); err != nil {
			return fmt.Errorf("failed to open snapshot db: %w", err)
		}
		archive = db
	}
	defer archive.Close()

	if err := archive.SaveSummary(ctx, sum); err != nil {
		return fmt.Errorf("failed to archive %s: %w", sum.Country, err)
	}
	if db == nil {
		return nil
	}

	obs, err := db.Observations(ctx, sum.Country)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Archived %s: %d observations in %s\n", sum.Country, len(obs), a.cfg.SnapshotDB)
	return nil
}

// formatValue prints percentages with two decimals and currency amounts in billions.
func formatValue(v float64, units string) string {
	if units == "US$" {
		return "$" + strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + units
}
