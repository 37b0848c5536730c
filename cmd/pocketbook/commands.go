package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cache"
	appcli "pocketbook/internal/cli"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	"pocketbook/internal/form"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/log"
	"pocketbook/internal/view"
)

const (
	shutdownTimeout    = 10 * time.Second
	cacheSweepInterval = time.Minute
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the local JSON API for the browser widget",
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := appcli.ShutdownContext(c.Context)
			defer stop()

			unsubscribe := rt.backend.Events.Subscribe(func(e events.Event) {
				rt.logger.Debug("Transaction changed", log.FieldEventKind, string(e.Kind), log.FieldTxID, e.Transaction.ID)
			})
			defer unsubscribe()

			sweeper := cache.NewManager(rt.logger)
			sweeper.Register(rt.backend.Views)

			srv := apphttp.NewServer(rt.cfg.Addr(), rt.session, rt.logger, rt.cfg.CORSAllowedOrigins)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				rt.logger.Info("Starting HTTP server", "addr", srv.Addr, log.FieldOperation, log.OpStartup)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				return sweeper.Run(ctx, cacheSweepInterval)
			})
			g.Go(func() error {
				<-ctx.Done()
				rt.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "income or expense"},
		&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "positive amount, e.g. 12.50"},
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "one of the categories listed by `pocketbook categories`"},
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD (defaults to today)"},
		&cli.StringFlag{Name: "description", Aliases: []string{"m"}, Usage: "optional note"},
	}
}

// applyFlags overrides the fields of f that were given on the command line.
func applyFlags(c *cli.Context, f form.Form) form.Form {
	if c.IsSet("type") {
		f.Type = c.String("type")
	}
	if c.IsSet("amount") {
		f.Amount = c.String("amount")
	}
	if c.IsSet("category") {
		f.Category = c.String("category")
	}
	if c.IsSet("date") {
		f.Date = c.String("date")
	}
	if c.IsSet("description") {
		f.Description = c.String("description")
	}
	return f
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "record a new transaction",
		Flags: formFlags(),
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			f := applyFlags(c, form.Form{Date: rt.tracker().Today().String()})
			in, err := f.Parse()
			if err != nil {
				return describe(err)
			}
			tx, _, err := rt.session.Submit(c.Context, in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(c.App.Writer, "added %s\n", tx.ID)
			return nil
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change fields of an existing transaction",
		ArgsUsage: "<id>",
		Flags:     formFlags(),
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return err
			}
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			existing, err := rt.session.StartEdit(id)
			if err != nil {
				return describe(err)
			}
			in, err := applyFlags(c, form.FromTransaction(existing)).Parse()
			if err != nil {
				return describe(err)
			}
			tx, _, err := rt.session.Submit(c.Context, in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(c.App.Writer, "updated %s\n", tx.ID)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "remove a transaction after confirmation",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return err
			}
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			rt.session.RequestDelete(id)
			if !c.Bool("yes") && !confirm(c, fmt.Sprintf("Delete transaction %s?", id)) {
				rt.session.CancelDelete()
				fmt.Fprintln(c.App.Writer, "cancelled")
				return nil
			}

			_, removed, err := rt.session.ConfirmDelete(c.Context)
			if err != nil {
				return describe(err)
			}
			if removed {
				fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
			} else {
				fmt.Fprintf(c.App.Writer, "nothing to delete for %s\n", id)
			}
			return nil
		},
	}
}

func confirm(c *cli.Context, question string) bool {
	fmt.Fprintf(c.App.Writer, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func monthFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "month", Usage: "YYYY-MM (defaults to the current month)"},
		&cli.BoolFlag{Name: "all", Usage: "include every month"},
	}
}

func selectedView(c *cli.Context, rt *runtime) (view.View, error) {
	month := rt.tracker().CurrentMonth().String()
	switch {
	case c.Bool("all"):
		month = ""
	case c.IsSet("month"):
		month = c.String("month")
	}
	return rt.tracker().View(month)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list transactions, newest first",
		Flags: monthFlags(),
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			v, err := selectedView(c, rt)
			if err != nil {
				return describe(err)
			}
			if v.Empty() {
				fmt.Fprintln(c.App.Writer, "No transactions found.")
				return nil
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, t := range v.Transactions {
				amount := core.FormatAmount(t.Amount)
				if !t.IsIncome() {
					amount = "-" + amount
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Category, amount, t.Description)
			}
			return tw.Flush()
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "show income, expense, balance and spending per category",
		Flags: monthFlags(),
		Action: func(c *cli.Context) error {
			rt, err := openRuntime(c)
			if err != nil {
				return err
			}
			defer rt.close()

			v, err := selectedView(c, rt)
			if err != nil {
				return describe(err)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "Income\t%s\t\n", core.FormatAmount(v.Summary.Income))
			fmt.Fprintf(tw, "Expense\t%s\t\n", core.FormatAmount(v.Summary.Expense))
			fmt.Fprintf(tw, "Balance\t%s\t\n", core.FormatSigned(v.Summary.Balance))
			if v.ByCategory.Len() > 0 {
				fmt.Fprintln(tw, "\t\t")
				for i, label := range v.ByCategory.Labels {
					fmt.Fprintf(tw, "%s\t%s\t\n", label, core.FormatAmount(v.ByCategory.Amounts[i]))
				}
			}
			return tw.Flush()
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "print the transaction types and categories",
		Action: func(c *cli.Context) error {
			types := make([]string, 0, len(core.Types()))
			for _, t := range core.Types() {
				types = append(types, t.String())
			}
			fmt.Fprintf(c.App.Writer, "Types: %s\n", strings.Join(types, ", "))
			for _, cat := range core.Categories() {
				fmt.Fprintln(c.App.Writer, cat)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "print transaction events published to AMQP",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := appcli.ShutdownContext(c.Context)
			defer stop()

			return client.Consume(ctx, func(_ context.Context, e events.Event) error {
				_, err := fmt.Fprintln(c.App.Writer, formatEvent(e))
				return err
			})
		},
	}
}

func formatEvent(e events.Event) string {
	at := e.At.Format(time.RFC3339)
	t := e.Transaction
	if e.Kind == events.Deleted {
		return fmt.Sprintf("%s %s %s", at, e.Kind, t.ID)
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s", at, e.Kind, t.ID, t.Date, t.Type, t.Category, core.FormatAmount(t.Amount))
}

// describe turns field errors into one readable line per field.
func describe(err error) error {
	errs, ok := form.AsErrors(err)
	if !ok {
		return err
	}
	lines := make([]string, len(errs))
	for i, fe := range errs {
		lines[i] = fmt.Sprintf("%s: %v", fe.Field, fe.Err)
	}
	return errors.New(strings.Join(lines, "\n"))
}
