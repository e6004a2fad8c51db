// Command coinctl drives a running coinboard server from the terminal. It runs the
// dashboard controller locally over the HTTP backend client and renders the result.
//
// Usage:
//
//	coinctl [--server URL] dashboard [--search q] [--filter gainers] [--sort price] [--category AI] [--heatmap count]
//	coinctl watchlists
//	coinctl show <watchlist-id>
//	coinctl create <name>
//	coinctl rename <watchlist-id> <name>
//	coinctl delete <watchlist-id>
//	coinctl import <watchlist-id> <query>
//	coinctl note <watchlist-id> <coin-id> [text]
//	coinctl settings
//	coinctl stream <stream-id> [--enabled=true|false] [--interval 30s]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/app"
	"github.com/vadiminshakov/coinboard/internal/clients"
	"github.com/vadiminshakov/coinboard/internal/domain"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("coinctl", flag.ContinueOnError)
	server := global.String("server", envOr("COINBOARD_URL", "http://localhost:8000"), "coinboard server url")
	verbose := global.Bool("v", false, "log requests")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errors.New("missing command, see coinctl -h")
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctrl := app.NewController(clients.NewBackendClient(*server), logger)
	if err := ctrl.Load(ctx); err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	out, err := dispatch(ctx, ctrl, cmd, rest)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func dispatch(ctx context.Context, c *app.Controller, cmd string, args []string) (string, error) {
	switch cmd {
	case "dashboard":
		if err := applyTableFlags(c, args); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "watchlists":
		return renderWatchlists(c.Snapshot().Watchlists), nil

	case "show":
		if err := need(args, 1, "show <watchlist-id>"); err != nil {
			return "", err
		}
		if err := c.Navigate(domain.View(args[0])); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "create":
		if err := need(args, 1, "create <name>"); err != nil {
			return "", err
		}
		if _, err := c.CreateWatchlist(ctx, strings.Join(args, " ")); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "rename":
		if err := need(args, 2, "rename <watchlist-id> <name>"); err != nil {
			return "", err
		}
		w, err := c.RenameWatchlist(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return "", err
		}
		return okStyle.Render("renamed to " + w.Name), nil

	case "delete":
		if err := need(args, 1, "delete <watchlist-id>"); err != nil {
			return "", err
		}
		if err := c.DeleteWatchlist(ctx, args[0]); err != nil {
			return "", err
		}
		return renderWatchlists(c.Snapshot().Watchlists), nil

	case "import":
		if err := need(args, 2, "import <watchlist-id> <query>"); err != nil {
			return "", err
		}
		if _, err := c.ImportCoins(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "note":
		if err := need(args, 2, "note <watchlist-id> <coin-id> [text]"); err != nil {
			return "", err
		}
		if _, err := c.SetNote(ctx, args[0], args[1], strings.Join(args[2:], " ")); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "settings":
		if err := c.Navigate(domain.ViewSettings); err != nil {
			return "", err
		}
		return renderSnapshot(c.Snapshot()), nil

	case "stream":
		return updateStream(ctx, c, args)

	default:
		return "", errors.Errorf("unknown command %q", cmd)
	}
}

func applyTableFlags(c *app.Controller, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	search := fs.String("search", "", "name or symbol substring")
	filter := fs.String("filter", "", "all, gainers or losers")
	sortKey := fs.String("sort", "", "sort key, repeat the default key to flip direction")
	category := fs.String("category", "", "restrict to a narrative")
	heatmap := fs.String("heatmap", "", "trend or count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u := app.TableUpdate{}
	if *search != "" {
		u.Search = search
	}
	if *filter != "" {
		f := domain.MovementFilter(*filter)
		u.Filter = &f
	}
	if *sortKey != "" {
		k := domain.SortKey(*sortKey)
		u.SortKey = &k
	}
	if err := c.UpdateTable(u); err != nil {
		return err
	}
	if *category != "" {
		if err := c.SelectCategory(*category); err != nil {
			return err
		}
	}
	if *heatmap != "" {
		return c.SetHeatmapMode(domain.HeatmapMode(*heatmap))
	}

	return nil
}

func updateStream(ctx context.Context, c *app.Controller, args []string) (string, error) {
	if err := need(args, 1, "stream <stream-id> [--enabled=bool] [--interval d]"); err != nil {
		return "", err
	}

	fs := flag.NewFlagSet("stream", flag.ContinueOnError)
	enabled := fs.String("enabled", "", "true or false")
	interval := fs.String("interval", "", "one of the allowed intervals")
	if err := fs.Parse(args[1:]); err != nil {
		return "", err
	}

	var patch domain.RefreshConfigPatch
	if *enabled != "" {
		v, err := strconv.ParseBool(*enabled)
		if err != nil {
			return "", errors.Wrap(err, "--enabled")
		}
		patch.Enabled = &v
	}
	if *interval != "" {
		patch.Interval = interval
	}

	if _, err := c.UpdateRefreshConfig(ctx, domain.StreamID(args[0]), patch); err != nil {
		return "", err
	}
	if err := c.Navigate(domain.ViewSettings); err != nil {
		return "", err
	}

	return renderSnapshot(c.Snapshot()), nil
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.Errorf("usage: coinctl %s", usage)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
