// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-paper-cloud/internal/adapter"
	"github.com/MKhiriev/go-paper-cloud/internal/config"
	"github.com/MKhiriev/go-paper-cloud/internal/logger"
	"github.com/MKhiriev/go-paper-cloud/internal/service"
	"github.com/MKhiriev/go-paper-cloud/internal/session"
	"github.com/MKhiriev/go-paper-cloud/internal/store"
	"github.com/MKhiriev/go-paper-cloud/internal/workers"
	"github.com/MKhiriev/go-paper-cloud/models"
)

const maxOTTAttempts = 3

var (
	errPasswordsDiffer = errors.New("passwords do not match")
	errEmailRequired   = errors.New("email is required")
)

// App is the runtime behind the commands: one session, the services bound
// to it and the background workers that keep it alive.
type App struct {
	cfg      *config.ClientConfig
	session  *session.Session
	storages *store.ClientStorages
	services *service.ClientServices
	workers  *workers.Workers

	prompt          Prompter
	out             io.Writer
	copyToClipboard func(string) error

	logger *logger.Logger
}

// NewApp opens the local record cache and wires the client services around
// a fresh session.
func NewApp(ctx context.Context, cfg *config.ClientConfig, prompt Prompter, out io.Writer, log *logger.Logger) (*App, error) {
	sess := session.New(log)

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, sess, log)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	services := service.NewClientServices(cfg, serverAdapter, storages.RecordCache, sess, log)

	return &App{
		cfg:             cfg,
		session:         sess,
		storages:        storages,
		services:        services,
		workers:         workers.NewWorkers(services.RefreshJob),
		prompt:          prompt,
		out:             out,
		copyToClipboard: writeClipboard,
		logger:          log,
	}, nil
}

// Close stops the workers, wipes the session and closes the cache.
func (a *App) Close() error {
	a.workers.Stop()
	if a.session.IsAuthenticated() {
		a.services.AuthService.Logout(context.Background())
	}
	return a.storages.Close()
}

type registerOptions struct {
	FirstName string
	LastName  string
	Timezone  string
	Copy      bool
}

// Register asks for a password twice, creates the account and shows the
// recovery key.
func (a *App) Register(ctx context.Context, email string, opts registerOptions) error {
	email, err := a.resolveEmail(email)
	if err != nil {
		return err
	}

	password, err := a.prompt.ReadSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := a.prompt.ReadSecret("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errPasswordsDiffer
	}

	result, err := a.services.AuthService.Register(ctx, models.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: opts.FirstName,
		LastName:  opts.LastName,
		Timezone:  opts.Timezone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, successStyle.Render("Account "+email+" created."))
	fmt.Fprintln(a.out, titleStyle.Render("Recovery key"))
	fmt.Fprintln(a.out, keyBoxStyle.Render(result.RecoveryKey))
	fmt.Fprintln(a.out, helpStyle.Render("It is shown only once and is the only way back in if you forget the password."))
	fmt.Fprintln(a.out, "Verification ID: "+result.VerificationID)

	if opts.Copy {
		if err := a.copyToClipboard(result.RecoveryKey); err != nil {
			a.logger.Warn().Err(err).Str("func", "App.Register").Msg("clipboard is not available")
			fmt.Fprintln(a.out, errorStyle.Render("could not copy the recovery key: "+err.Error()))
		} else {
			fmt.Fprintln(a.out, helpStyle.Render("Recovery key copied to the clipboard."))
		}
	}
	return nil
}

// Login walks the login flow interactively and starts the background
// workers on success.
func (a *App) Login(ctx context.Context, email string) error {
	email, err := a.resolveEmail(email)
	if err != nil {
		return err
	}

	flow, err := a.services.AuthService.BeginLogin(email)
	if err != nil {
		return err
	}
	if err := flow.RequestOneTimeToken(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, helpStyle.Render("A one-time code was sent to "+email+"."))

	for attempt := 1; ; attempt++ {
		code, err := a.prompt.ReadLine("One-time code: ")
		if err != nil {
			return err
		}
		_, err = flow.VerifyOneTimeToken(ctx, code)
		if err == nil {
			break
		}
		if !errors.Is(err, service.ErrInvalidOTT) || attempt == maxOTTAttempts {
			return err
		}
		fmt.Fprintln(a.out, errorStyle.Render("wrong code, try again"))
	}

	password, err := a.prompt.ReadSecret("Password: ")
	if err != nil {
		return err
	}
	if _, err := flow.CompleteLogin(ctx, password); err != nil {
		return err
	}

	a.workers.Start(ctx)
	fmt.Fprintln(a.out, successStyle.Render("Logged in as "+email+"."))
	return nil
}

// Logout stops the workers and wipes every key held by the session.
func (a *App) Logout(ctx context.Context) {
	a.workers.Stop()
	a.services.AuthService.Logout(ctx)
}

// Version returns the build description of the binary.
func Version(ctx context.Context, buildInfo models.AppBuildInfo, log *logger.Logger) (string, error) {
	infoService, err := service.NewAppInfoService(buildInfo, log)
	if err != nil {
		return "", err
	}
	return infoService.GetAppVersion(ctx), nil
}

func (a *App) resolveEmail(email string) (string, error) {
	if email == "" {
		email = a.cfg.App.Email
	}
	if email == "" {
		line, err := a.prompt.ReadLine("Email: ")
		if err != nil {
			return "", err
		}
		email = line
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errEmailRequired
	}
	return email, nil
}
