// cmd/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/invoice-automation/pkg/archive"
	"github.com/invoice-automation/pkg/catalog"
	"github.com/invoice-automation/pkg/config"
	"github.com/invoice-automation/pkg/delivery"
	"github.com/invoice-automation/pkg/invoice"
	"github.com/invoice-automation/pkg/invoicing"
	"github.com/invoice-automation/pkg/logging"
	"github.com/invoice-automation/pkg/metrics"
	"github.com/invoice-automation/pkg/render"
	"github.com/invoice-automation/pkg/server"
)

// @title Invoice Automation API
// @version 1.0
// @description Computes, renders and delivers customer invoices.
// @BasePath /
func main() {
	app := &cli.App{
		Name:  "invoicer",
		Usage: "generate, render and deliver customer invoices",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "generate",
				Usage: "generate one invoice and write it to the output sink",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "customer", Aliases: []string{"c"}, Usage: "customer id", Required: true},
					&cli.StringSliceFlag{Name: "product", Aliases: []string{"p"}, Usage: "product id, repeat per line", Required: true},
					&cli.IntSliceFlag{Name: "qty", Aliases: []string{"q"}, Usage: "quantity, one per --product", Required: true},
					&cli.BoolFlag{Name: "email", Usage: "e-mail the invoice after generating it"},
					&cli.StringFlag{Name: "to", Usage: "recipient override; defaults to the customer's e-mail"},
				},
				Action: generate,
			},
			{
				Name:   "catalog",
				Usage:  "list known customers and products",
				Action: listCatalog,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

type deps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	svc      *invoicing.Service
}

func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	store, err := catalog.Load(ctx, cfg.CatalogSource)
	if err != nil {
		logger.Error().Err(err).Str("source", cfg.CatalogSource).Msg("catalog_load_failed")
		return nil, err
	}
	logger.Info().
		Int("customers", len(store.Customers())).
		Int("products", len(store.Products())).
		Msg("catalog_loaded")

	profile := render.DefaultProfile()
	if cfg.CompanyProfile != "" {
		if profile, err = render.LoadProfile(cfg.CompanyProfile); err != nil {
			return nil, err
		}
	}
	assets, err := render.LoadAssets(profile, cfg.FontPath, cfg.BoldFontPath)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(profile, assets, render.WithCurrencySymbol(cfg.CurrencySymbol))
	if err != nil {
		return nil, err
	}

	var sink archive.Sink = archive.DirSink{Dir: cfg.OutputDir}
	if cfg.ArchiveS3Bucket != "" {
		if sink, err = archive.NewS3Sink(cfg.AWSRegion, cfg.ArchiveS3Bucket, cfg.ArchiveS3Prefix); err != nil {
			return nil, err
		}
	}

	var dispatcher delivery.Dispatcher = delivery.Nop{}
	if cfg.DeliveryEnabled() {
		if dispatcher, err = delivery.NewSMTPDispatcher(delivery.SMTPConfig(cfg.SMTP)); err != nil {
			return nil, err
		}
	}
	mail, err := delivery.NewTemplate(cfg.Mail.Subject, cfg.Mail.Body)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	svc, err := invoicing.NewService(invoicing.Config{
		Store:      store,
		Calculator: invoice.NewCalculator(store, invoice.WithPrefix(cfg.InvoicePrefix)),
		Renderer:   renderer,
		Sink:       sink,
		Dispatcher: dispatcher,
		Mail:       mail,
		Company:    profile.Name,
		Logger:     logger,
		Metrics:    metrics.New(cfg.MetricsNamespace, registry),
	})
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, logger: logger, registry: registry, svc: svc}, nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr(),
		Handler:           server.NewRouter(a.svc, a.logger, a.registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("http_listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("http_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func generate(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}

	res, err := a.svc.Generate(c.Context, invoice.Request{
		CustomerID: c.String("customer"),
		ProductIDs: c.StringSlice("product"),
		Quantities: c.IntSlice("qty"),
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Invoice %s for %s\n", res.Invoice.Number, res.Invoice.Customer.Name)
	fmt.Fprintf(out, "Total:   %s\n", invoice.FormatMoney(a.cfg.CurrencySymbol, res.Invoice.GrandTotal))
	fmt.Fprintf(out, "Written: %s\n", res.Document.Location)

	if !c.Bool("email") {
		return nil
	}
	ack, err := a.svc.Deliver(c.Context, res, c.String("to"))
	if err != nil {
		// The document is already stored; delivery can be retried.
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "Sent to: %s\n", ack.Recipient)
	return nil
}

func listCatalog(c *cli.Context) error {
	a, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	store := a.svc.Catalog()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tNAME\tMOBILE\tEMAIL")
	for _, cu := range store.Customers() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cu.ID, cu.Name, cu.Mobile, cu.Email)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tPRICE")
	for _, p := range store.Products() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, invoice.FormatMoney(a.cfg.CurrencySymbol, p.UnitPrice))
	}
	return tw.Flush()
}

func exitCode(err error) int {
	var (
		mismatch   *invoice.MismatchError
		notFound   *invoice.NotFoundError
		quantity   *invoice.QuantityError
		validation *invoice.ValidationError
	)
	switch {
	case errors.As(err, &mismatch), errors.As(err, &notFound),
		errors.As(err, &quantity), errors.As(err, &validation):
		return 2
	default:
		return 1
	}
}
