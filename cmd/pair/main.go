// Package main provides a command line client that pairs one menu item
// using the same configuration and engine as the API server
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/container"
	"github.com/alchemorsel/menupairing/internal/ports/inbound"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"go.uber.org/fx"
)

const (
	exitCodeSuccess  = 0
	exitCodeFailure  = 1
	exitCodeBadUsage = 2
)

// options holds command-line configuration
type options struct {
	ConfigPath   string
	MenuDir      string
	RestaurantID string
	ItemID       string
	Style        string
	Diet         string
	Timeout      time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitCodeBadUsage
	}

	style, err := menu.ParseDiningStyle(opts.Style)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -style %q: %v\n", opts.Style, err)
		return exitCodeBadUsage
	}
	diet, err := menu.ParseDietaryPreference(opts.Diet)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -diet %q: %v\n", opts.Diet, err)
		return exitCodeBadUsage
	}

	var service inbound.PairingService
	app := fx.New(
		container.CoreModule(opts.ConfigPath),
		fx.Decorate(func(cfg *config.Config) *config.Config {
			// stdout is reserved for the result
			cfg.App.LogOutput = []string{"stderr"}
			cfg.Menu.Watch = false
			if opts.MenuDir != "" {
				cfg.Menu.Dir = opts.MenuDir
			}
			return cfg
		}),
		fx.Populate(&service),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "failed to initialise: %v\n", err)
		return exitCodeFailure
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start: %v\n", err)
		return exitCodeFailure
	}
	defer app.Stop(context.Background())

	result, err := service.SuggestForRestaurant(ctx, inbound.SuggestCommand{
		RestaurantID: opts.RestaurantID,
		ItemID:       opts.ItemID,
		DiningStyle:  style,
		Dietary:      diet,
	})
	if err != nil {
		switch {
		case errors.Is(err, outbound.ErrRestaurantNotFound):
			fmt.Fprintf(stderr, "restaurant %q not found\n", opts.RestaurantID)
		case errors.Is(err, menu.ErrItemNotFound):
			fmt.Fprintf(stderr, "item %q is not on the menu of %q\n", opts.ItemID, opts.RestaurantID)
		default:
			fmt.Fprintf(stderr, "pairing failed: %v\n", err)
		}
		return exitCodeFailure
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(stderr, "failed to write result: %v\n", err)
		return exitCodeFailure
	}

	return exitCodeSuccess
}

// parseFlags parses command-line flags
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("pair", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "path to the config file")
	fs.StringVar(&opts.MenuDir, "menu-dir", "", "directory of <restaurant-id>.json menus (overrides menu.dir)")
	fs.StringVar(&opts.RestaurantID, "restaurant", "", "restaurant ID")
	fs.StringVar(&opts.ItemID, "item", "", "ID of the selected menu item")
	fs.StringVar(&opts.Style, "style", string(menu.DiningStyleCasual), "dining style: romantic, casual, business, celebration, quick")
	fs.StringVar(&opts.Diet, "diet", string(menu.DietaryAll), "dietary preference: vegetarian, adventurous, all")
	fs.DurationVar(&opts.Timeout, "timeout", time.Minute, "overall timeout")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.RestaurantID == "" || opts.ItemID == "" {
		fmt.Fprintln(stderr, "both -restaurant and -item are required")
		fs.Usage()
		return opts, errors.New("missing required flags")
	}

	return opts, nil
}
