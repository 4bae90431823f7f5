// Command export fetches readings once and writes the converted
// SensorThings document to a local JSON file.
//
// Usage:
//
//	export -flow latest [-out sensor_things_output.json]
//	export -flow timeseries -station 11117 [-from 2024-11-01T00:00:00Z] [-to 2024-11-05T00:00:00Z] [-out file.json]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	fileadapter "github.com/couchcryptid/suhm-sensorthings-bridge/internal/adapter/file"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/adapter/suhm"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/config"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/domain"
	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/observability"
)

func main() {
	flow := flag.String("flow", "latest", "latest or timeseries")
	station := flag.String("station", "", "station ID (timeseries only)")
	from := flag.String("from", "", "RFC 3339 start of the time range (timeseries only)")
	to := flag.String("to", "", "RFC 3339 end of the time range (timeseries only)")
	out := flag.String("out", "", "output file path (defaults depend on flow)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if err := run(cfg, logger, *flow, *station, *from, *to, *out); err != nil {
		logger.Error("export failed", "flow", *flow, "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, flow, station, from, to, out string) error {
	ctx := context.Background()
	client := suhm.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, observability.NewMetrics(), logger)

	switch flow {
	case "latest":
		if out == "" {
			out = "sensor_things_output.json"
		}
		readings, err := client.FetchLatest(ctx)
		if err != nil {
			return err
		}
		doc, err := domain.ConvertLatest(readings)
		if err != nil {
			return err
		}
		if err := fileadapter.WriteDocument(out, doc); err != nil {
			return err
		}
		logger.Info("latest document written",
			"path", out,
			"stations", len(doc.Things),
			"observations", len(doc.Observations),
		)
		return nil

	case "timeseries":
		q, err := domain.ParseTimeseriesQuery(station, from, to)
		if err != nil {
			return err
		}
		if out == "" {
			out = fmt.Sprintf("timeseries_%s.json", q.StationID)
		}
		points, err := client.FetchTimeseries(ctx, q)
		if err != nil {
			return err
		}
		doc, err := domain.ConvertTimeseries(q.StationID, points)
		if err != nil {
			return err
		}
		if err := fileadapter.WriteDocument(out, doc); err != nil {
			return err
		}
		logger.Info("timeseries document written",
			"path", out,
			"station", q.StationID,
			"observations", len(doc.Observations),
		)
		return nil

	default:
		return fmt.Errorf("unknown flow %q (want latest or timeseries)", flow)
	}
}
