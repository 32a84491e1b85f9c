// Command analyze runs the dashboard engines once over a CSV file and prints
// the result as JSON, exports a view, or replays the file onto the ingest queue.
//
// Usage:
//
//	analyze stats -input data.csv -variables iron,silica
//	analyze correlation -input data.csv -mode pairwise
//	analyze forecast -input data.csv -horizon 14
//	analyze export -input data.csv -format xlsx -out mining.xlsx
//	analyze publish -input data.csv -config config.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/ingest"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
)

const defaultBatchSize = 500

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "analyze %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: analyze <stats|correlation|forecast|export|publish> -input file.csv [flags]")
}

// options holds the flags shared by every command
type options struct {
	input     string
	from      string
	to        string
	where     string
	variables string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.input, "input", "data/cleaned_dataset.csv", "CSV dataset")
	fs.StringVar(&o.from, "from", "", "First date (YYYY-MM-DD)")
	fs.StringVar(&o.to, "to", "", "Last date (YYYY-MM-DD)")
	fs.StringVar(&o.where, "where", "", "Filter expression, e.g. 'iron > 65'")
	fs.StringVar(&o.variables, "variables", "", "Comma separated variables")
}

func (o *options) filter() dataset.Filter {
	return dataset.Filter{From: o.from, To: o.to, Expr: o.where}
}

func (o *options) variableList() []string {
	var names []string
	for _, name := range strings.Split(o.variables, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var opts options
	opts.register(fs)

	mode := fs.String("mode", "", "Correlation mode: independent or pairwise")
	horizon := fs.Int("horizon", 0, "Forecast horizon in days")
	window := fs.Int("window", 0, "Moving average window")
	cadence := fs.String("cadence", "", "Future date cadence: daily or observed")
	format := fs.String("format", "csv", "Export format: csv, json or xlsx")
	output := fs.String("out", "", "Export file, stdout when empty")
	compress := fs.Bool("compress", false, "Snappy-compress the export")
	configPath := fs.String("config", "", "Configuration file for publish")
	batch := fs.Int("batch", defaultBatchSize, "Records per published message")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.NewDevelopment()
	logging.SetGlobal(logger)

	store := dataset.NewStore()
	source := dataset.NewFileSource(opts.input)
	n, err := dataset.Reload(ctx, source, store)
	if err != nil {
		return err
	}
	logger.Debug("Dataset loaded", "input", opts.input, "records", n)

	svc := services.NewDashboardService(logger, store, source, nil, config.DefaultConfig().Analytics)

	switch command {
	case "stats":
		result, err := svc.Stats(ctx, opts.filter(), opts.variableList())
		if err != nil {
			return err
		}
		return printJSON(out, result)

	case "correlation":
		result, err := svc.Correlation(ctx, models.CorrelationRequest{
			Filter:    opts.filter(),
			Variables: opts.variableList(),
			Mode:      *mode,
		})
		if err != nil {
			return err
		}
		return printJSON(out, result)

	case "forecast":
		result, err := svc.Forecast(ctx, models.ForecastRequest{
			Filter:    opts.filter(),
			Variables: opts.variableList(),
			Horizon:   *horizon,
			Window:    *window,
			Cadence:   *cadence,
		})
		if err != nil {
			return err
		}
		return printJSON(out, models.NewForecastResponse(result))

	case "export":
		result, err := svc.Export(ctx, models.ExportRequest{
			Filter:    opts.filter(),
			Format:    *format,
			Variables: opts.variableList(),
			Compress:  *compress,
		})
		if err != nil {
			return err
		}
		if *output == "" {
			_, err = out.Write(result.Body)
			return err
		}
		if err := os.WriteFile(*output, result.Body, 0644); err != nil {
			return fmt.Errorf("write %s: %w", *output, err)
		}
		logger.Info("Export written", "file", *output, "bytes", len(result.Body))
		return nil

	case "publish":
		return publish(ctx, logger, *configPath, store, opts.filter(), *batch)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// publish replays the filtered dataset onto the configured ingest queue
func publish(ctx context.Context, logger *logging.Logger, configPath string, store *dataset.Store, f dataset.Filter, batch int) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	records, err := store.View(f)
	if err != nil {
		return err
	}

	pub, err := ingest.NewPublisher(cfg.Ingest)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	sent, err := ingest.PublishRecords(ctx, pub, cfg.Ingest.Subject, records, batch)
	logger.Info("Records published",
		"type", cfg.Ingest.QueueType(), "subject", cfg.Ingest.Subject, "records", sent)
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
