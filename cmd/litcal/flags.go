package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/litcal-webcalendar/internal/database"
	"github.com/zapponejosh/litcal-webcalendar/internal/litcalapi"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

// calendarFlags select a calendar and, for commands that lay one out, the
// table options. Unset flags fall back to the environment configuration.
type calendarFlags struct {
	year          int
	yearType      string
	locale        string
	nation        string
	diocese       string
	epiphany      string
	ascension     string
	corpusChristi string
	noCache       bool

	optionsPath string
	opts        []string
}

func (f *calendarFlags) register(cmd *cobra.Command, withOptions bool) {
	fs := cmd.Flags()
	fs.IntVarP(&f.year, "year", "y", 0, "Calendar year (default: the current year)")
	fs.StringVar(&f.yearType, "year-type", "", "CIVIL or LITURGICAL (default: LITCAL_YEAR_TYPE)")
	fs.StringVarP(&f.locale, "locale", "l", "", "Locale of the calendar and the table (default: LITCAL_LOCALE)")
	fs.StringVar(&f.nation, "nation", "", "National calendar id")
	fs.StringVar(&f.diocese, "diocese", "", "Diocesan calendar id")
	fs.StringVar(&f.epiphany, "epiphany", "", "JAN6 or SUNDAY_JAN2_JAN8")
	fs.StringVar(&f.ascension, "ascension", "", "THURSDAY or SUNDAY")
	fs.StringVar(&f.corpusChristi, "corpus-christi", "", "THURSDAY or SUNDAY")
	fs.BoolVar(&f.noCache, "no-cache", false, "Always request the API, bypassing the response cache")
	cmd.MarkFlagsMutuallyExclusive("nation", "diocese")

	if withOptions {
		fs.StringVar(&f.optionsPath, "options", "", "YAML table options file (default: TABLE_OPTIONS_PATH)")
		fs.StringArrayVarP(&f.opts, "opt", "o", nil, "Table option as name=value, repeatable")
	}
}

// request merges the flags over the configured calendar.
func (f *calendarFlags) request() litcalapi.Request {
	req := configuredRequest()
	req.Year = f.year
	if f.yearType != "" {
		req.YearType = f.yearType
	}
	if f.locale != "" {
		req.Locale = f.locale
	}
	switch {
	case f.nation != "":
		req.Nation, req.Diocese = f.nation, ""
	case f.diocese != "":
		req.Diocese, req.Nation = f.diocese, ""
	}
	if f.epiphany != "" {
		req.Epiphany = f.epiphany
	}
	if f.ascension != "" {
		req.Ascension = f.ascension
	}
	if f.corpusChristi != "" {
		req.CorpusChristi = f.corpusChristi
	}
	return req
}

// tableOptions returns the table options in increasing precedence: the
// locale, the options file, then each --opt.
func (f *calendarFlags) tableOptions() ([]webcalendar.Option, error) {
	var opts []webcalendar.Option
	if locale := f.request().Locale; locale != "" {
		opts = append(opts, webcalendar.WithLocale(locale))
	}

	path := f.optionsPath
	if path == "" {
		path = cfg.TableOptionsPath
	}
	if path != "" {
		fileOpts, err := webcalendar.LoadOptionsFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	for _, kv := range f.opts {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, &webcalendar.ConfigurationError{Option: "opt", Value: kv, Reason: "expected name=value"}
		}
		opt, err := webcalendar.ParseOption(strings.TrimSpace(name), strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// configuredRequest is the calendar named by the environment.
func configuredRequest() litcalapi.Request {
	return litcalapi.Request{
		YearType: cfg.YearType,
		Locale:   cfg.Locale,
		Nation:   cfg.Nation,
		Diocese:  cfg.Diocese,
	}
}

// newClient builds an API client on cache, which may be nil.
func newClient(cache litcalapi.Cache) (*litcalapi.Client, error) {
	return litcalapi.New(litcalapi.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
		TTL:     cfg.CacheTTL,
	}, cache, log)
}

// openClient builds an API client backed by the response cache unless
// noCache is set. The returned func closes the cache.
func openClient(ctx context.Context, noCache bool) (*litcalapi.Client, func(), error) {
	if noCache {
		client, err := newClient(nil)
		return client, func() {}, err
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return client, func() { db.Close() }, nil
}

// openDatabase opens and migrates the response cache.
func openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
