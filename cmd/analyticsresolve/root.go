package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/analyticsresolve/config"
	"github.com/jonwraymond/analyticsresolve/platform"
)

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "analyticsresolve",
		Short:         "Resolve analytics accounts by domain, URL or name",
		Long:          "analyticsresolve discovers GA4, Search Console and Merchant Center inventories and resolves noisy input to canonical account ids.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)

	root.AddCommand(
		newServeCmd(d),
		newResolveCmd(d),
		newInventoryCmd(d),
	)
	return root
}

// withApp loads configuration, applies overrides and runs fn with a wired
// app, closing it afterwards.
func withApp(ctx context.Context, d deps, override func(*config.Config), fn func(*app) error) (err error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	if override != nil {
		override(&cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg, d)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func newServeCmd(d deps) *cobra.Command {
	var (
		transport string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the account tools over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			override := func(c *config.Config) {
				if cmd.Flags().Changed("transport") {
					c.Transport = transport
				}
				if cmd.Flags().Changed("port") {
					c.Port = port
				}
			}
			return withApp(cmd.Context(), d, override, func(a *app) error {
				srv, err := a.server()
				if err != nil {
					return err
				}
				addr := net.JoinHostPort("", strconv.Itoa(a.cfg.Port))
				return srv.Run(cmd.Context(), a.cfg.Transport, addr)
			})
		},
	}
	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "stdio or http (overrides MCP_TRANSPORT)")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port (overrides PORT)")
	return cmd
}

func newResolveCmd(d deps) *cobra.Command {
	var platformFlag string
	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a domain, URL, id or name and print ranked matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := platform.ParsePlatform(platformFlag)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), d, nil, func(a *app) error {
				res, err := a.engine.ResolveDetailed(cmd.Context(), args[0], p)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "all", "platform to search: ga4, gsc, gmc or all")
	return cmd
}

func newInventoryCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Discover every platform and print an inventory summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), d, nil, func(a *app) error {
				sum, err := a.index.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), sum); err != nil {
					return err
				}
				if sum.HasErrors {
					return fmt.Errorf("inventory incomplete")
				}
				return nil
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
