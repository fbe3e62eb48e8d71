// Package cli implements the iss command line tool
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/evyataryagoni/issflyover/internal/service"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// passTimeLayout renders rise times the way a browser prints a Date
const passTimeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

var (
	ErrNegativeTimeout = errors.New("timeout must not be negative")
	ErrMissingLocation = errors.New("both --lat and --lon are required")
)

// Options holds the flag values shared by every subcommand
type Options struct {
	IPLookupURL  string
	GeoLookupURL string
	FlyoverURL   string
	Timeout      time.Duration
	Verbose      bool
	UTC          bool
}

func defaultOptions() *Options {
	return &Options{
		IPLookupURL:  fetcher.DefaultIPLookupURL,
		GeoLookupURL: fetcher.DefaultGeoLookupURL,
		FlyoverURL:   fetcher.DefaultFlyoverURL,
		Timeout:      30 * time.Second,
	}
}

// NewCmd builds the iss root command and its subcommands
func NewCmd() *cobra.Command {
	opts := defaultOptions()

	root := &cobra.Command{
		Use:           "iss",
		Short:         "iss tells you when the International Space Station next flies over you",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			passes, err := svc.NextISSTimesForMyLocation(cmd.Context())
			if err != nil {
				return err
			}

			printPasses(cmd.OutOrStdout(), passes, opts.location())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.IPLookupURL, "ip-url", opts.IPLookupURL, "IP lookup endpoint")
	flags.StringVar(&opts.GeoLookupURL, "geo-url", opts.GeoLookupURL, "geolocation endpoint, the IP is appended")
	flags.StringVar(&opts.FlyoverURL, "flyover-url", opts.FlyoverURL, "ISS flyover prediction endpoint")
	flags.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "per-request timeout, 0 waits forever")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every upstream request to stderr")
	flags.BoolVar(&opts.UTC, "utc", false, "print pass times in UTC instead of local time")

	root.AddCommand(newIPCmd(opts), newCoordsCmd(opts), newFlyoversCmd(opts))
	return root
}

func newIPCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Print this machine's public IP address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ip, err := svc.MyIP(cmd.Context())
			if err != nil {
				return err
			}

			pterm.DefaultBasicText.WithWriter(cmd.OutOrStdout()).Println(ip)
			return nil
		},
	}
}

func newCoordsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "coords <ip>",
		Short: "Print the approximate latitude and longitude of an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			coords, err := svc.Coordinates(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			pterm.DefaultBasicText.WithWriter(cmd.OutOrStdout()).
				Printfln("latitude: %g, longitude: %g", coords.Latitude, coords.Longitude)
			return nil
		},
	}
}

func newFlyoversCmd(opts *Options) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "flyovers",
		Short: "Print upcoming ISS passes over the given coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return ErrMissingLocation
			}

			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			passes, err := svc.Flyovers(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}

			printPasses(cmd.OutOrStdout(), passes, opts.location())
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees (-90..90)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees (-180..180)")
	return cmd
}

// service wires a fetcher.Client for all three stages
func (o *Options) service(logOut io.Writer) (*service.ISSService, error) {
	if o.Timeout < 0 {
		return nil, ErrNegativeTimeout
	}

	level := "disabled"
	if o.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true, Output: logOut})

	client := fetcher.NewClient(fetcher.Options{
		IPLookupURL:  o.IPLookupURL,
		GeoLookupURL: o.GeoLookupURL,
		FlyoverURL:   o.FlyoverURL,
		Timeout:      o.Timeout,
	}, nil, log)

	return service.NewISSService(client, client, client, nil, log), nil
}

func (o *Options) location() *time.Location {
	if o.UTC {
		return time.UTC
	}
	return time.Local
}

// printPasses writes one line per pass, in upstream order
func printPasses(w io.Writer, passes []models.FlyoverPass, loc *time.Location) {
	printer := pterm.DefaultBasicText.WithWriter(w)
	for _, pass := range passes {
		printer.Println(formatPass(pass, loc))
	}
}

func formatPass(pass models.FlyoverPass, loc *time.Location) string {
	return fmt.Sprintf("Next pass at %s for %d seconds!", pass.RiseTime().In(loc).Format(passTimeLayout), pass.Duration)
}
