// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/server"
	"github.com/MKhiriev/go-paper-cloud/internal/testserver"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const (
	clientRole    = "papercloud-client"
	devServerRole = "papercloud-dev-server"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type cli struct {
	root *cobra.Command
}

// New returns the papercloud command tree as a [Client].
func New(buildInfo models.AppBuildInfo) Client {
	return &cli{root: NewRootCommand(buildInfo)}
}

func (c *cli) Execute(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// NewRootCommand builds the papercloud command with its subcommands. The
// configuration flags are persistent and shared by every subcommand.
func NewRootCommand(buildInfo models.AppBuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "papercloud",
		Short: "End-to-end encrypted file storage client",
		Long: `papercloud keeps files in collections on a remote server.
Everything except the account email is encrypted on this machine before it is
sent: the server never sees the password, a key or a file name.`,
		SilenceUsage: true,
	}

	flags := config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newRegisterCommand(flags),
		newShellCommand(flags),
		newVersionCommand(buildInfo),
		newDevServerCommand(),
	)
	return root
}

// openApp merges the configuration and builds the runtime for cmd.
func openApp(cmd *cobra.Command, flags *config.StructuredConfig) (*App, error) {
	cfg, err := config.GetClientConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error getting configs: %w", err)
	}

	log := logger.NewClientLogger(clientRole, cfg.App.LogFile, cfg.App.LogLevel)
	log.Debug().Str("server", cfg.Adapter.HTTPAddress).Str("db", cfg.Storage.DB.DSN).Msg("received configs")

	app, err := NewApp(cmd.Context(), cfg, NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()), cmd.OutOrStdout(), log)
	if err != nil {
		log.Err(err).Msg("init client app error")
		return nil, err
	}
	return app, nil
}

func newRegisterCommand(flags *config.StructuredConfig) *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register [email]",
		Short: "Create an account",
		Long: `Create an account. The password never leaves this machine: it derives the
key that wraps the account's master key. A recovery key is printed once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Register(cmd.Context(), firstArg(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "IANA time zone, e.g. Europe/Berlin")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "Copy the recovery key to the clipboard")
	return cmd
}

func newShellCommand(flags *config.StructuredConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [email]",
		Short: "Log in and manage collections and files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Shell(cmd.Context(), firstArg(args))
		},
	}
}

func newVersionCommand(buildInfo models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := Version(cmd.Context(), buildInfo, logger.Nop())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "papercloud "+version)
			return nil
		},
	}
}

// newDevServerCommand serves the in-memory API for local development.
// One-time codes are printed instead of being mailed.
func newDevServerCommand() *cobra.Command {
	var (
		listen       string
		accessTTL    time.Duration
		challengeTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:    "dev-server",
		Short:  "Run an in-memory API server for local development",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.NewLogger(devServerRole, cmd.ErrOrStderr())
			out := cmd.OutOrStdout()

			api := testserver.New(
				testserver.WithLogger(log),
				testserver.WithAccessTTL(accessTTL),
				testserver.WithChallengeTTL(challengeTTL),
				testserver.WithOTTDelivery(func(email, ott string) {
					fmt.Fprintf(out, "one-time code for %s: %s\n", email, ott)
				}),
			)

			srv, err := server.NewServer(api.Handler(), listen, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "listening on http://%s\n", srv.Addr())
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "localhost:8000", "Listen address")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", 15*time.Minute, "Access token lifetime")
	cmd.Flags().DurationVar(&challengeTTL, "challenge-ttl", 5*time.Minute, "Login challenge lifetime")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
