package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"api-monitor/application"
	"api-monitor/domain"
	"api-monitor/infrastructure/config"
	"api-monitor/infrastructure/console"
	"api-monitor/infrastructure/logging"
	"api-monitor/infrastructure/web"
)

func main() {
	cfg := config.Load()
	if err := logging.Setup(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}

	source := flag.String("source", cfg.Source, "Collection source: fixture, http or clickhouse")
	fixtureFile := flag.String("fixture-file", cfg.FixtureFile, "YAML fixture file (fixture source only)")
	view := flag.String("view", "requests", "What to show: requests, problems or timeline")
	layout := flag.String("layout", "list", "Render layout: list or table")
	color := flag.Bool("color", true, "Colorize console output")
	serve := flag.Bool("serve", false, "Serve the query API instead of rendering once")
	watch := flag.Duration("watch", 0, "Re-run the query at this interval (0 renders once)")

	var raw domain.RawQuery
	flag.StringVar(&raw.Search, "search", "", "Case-insensitive substring of path (or title for problems)")
	flag.StringVar(&raw.Method, "method", "all", "HTTP method")
	flag.StringVar(&raw.Status, "status", "all", "Response status code")
	flag.StringVar(&raw.Window, "window", "all", "Time window: all, 1h, 6h or 24h")
	flag.StringVar(&raw.Severity, "severity", "all", "Problem severity: low, medium, high or critical")
	flag.StringVar(&raw.Sort, "sort", "", "Sort field (default createdAt for requests, lastOccurrence for problems)")
	flag.StringVar(&raw.Direction, "direction", "", "Sort direction: asc or desc")
	flag.StringVar(&raw.Page, "page", "1", "Page number")
	flag.StringVar(&raw.PageSize, "page-size", "10", "Page size")
	flag.StringVar(&raw.MinResponseTime, "min-response-time", "", "Minimum response time in ms")
	flag.StringVar(&raw.MaxResponseTime, "max-response-time", "", "Maximum response time in ms")
	flag.Parse()

	cfg.Source = *source
	cfg.FixtureFile = *fixtureFile

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Source).Msg("could not open source")
	}
	defer closeSource()

	svc, err := application.NewDashboardService(src,
		application.WithCache(cfg.CacheSize),
		application.WithLogger(logging.Component("dashboard")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create dashboard service")
	}

	if *serve {
		router := web.NewRouter(web.NewHandler(svc, nil))
		if err := web.Serve(ctx, cfg.ListenAddr, router); err != nil {
			log.Fatal().Err(err).Msg("query API failed")
		}
		return
	}

	l, err := console.ParseLayout(*layout)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid layout")
	}
	load, err := viewFunc(svc, console.NewRenderer(os.Stdout, l, *color), *view, raw)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid query")
	}

	if *watch <= 0 {
		show, err := load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("query failed")
		}
		show()
		return
	}

	application.Watch(ctx, *watch, load, func(show func(), err error) {
		if err != nil {
			log.Error().Err(err).Msg("refresh failed")
			return
		}
		fmt.Print("\033[H\033[2J")
		show()
		fmt.Printf("\nLast refresh %s, every %s. Ctrl+C to stop.\n", time.Now().Format("15:04:05"), *watch)
	})
}

// viewFunc parses raw for view. The returned function runs the query and
// hands back the function that draws its result.
func viewFunc(svc *application.DashboardService, r *console.Renderer, view string, raw domain.RawQuery) (func(context.Context) (func(), error), error) {
	switch view {
	case "requests":
		q, err := domain.ParseRequestQuery(raw)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (func(), error) {
			res, err := svc.Requests(ctx, q)
			if err != nil {
				return nil, err
			}
			return func() { r.Requests(res) }, nil
		}, nil
	case "problems":
		q, err := domain.ParseProblemQuery(raw)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (func(), error) {
			res, err := svc.Problems(ctx, q)
			if err != nil {
				return nil, err
			}
			return func() { r.Problems(res) }, nil
		}, nil
	case "timeline":
		q, err := domain.ParseRequestQuery(raw)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (func(), error) {
			tl, err := svc.Timeline(ctx, q)
			if err != nil {
				return nil, err
			}
			return func() { r.Timeline(tl) }, nil
		}, nil
	}
	return nil, fmt.Errorf("unknown view %q (want requests, problems or timeline)", view)
}
