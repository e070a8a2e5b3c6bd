package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/vaani/internal/auth"
	"horse.fit/vaani/internal/cli"
	"horse.fit/vaani/internal/httpapi"
	"horse.fit/vaani/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	profile := fs.String("profile", "", "Default translation profile (default $TRANSLATION_PROFILE)")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 3*time.Minute, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	svc, err := bootstrap(envLoader, *profile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := svc.logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(httpapi.Deps{
		Sessions:  svc.sessions,
		Capturer:  svc.capturer,
		Artifacts: svc.synth,
		Credentials: auth.Credentials{
			User:         svc.cfg.APIBasicAuthUser,
			PasswordHash: svc.cfg.APIBasicAuthPasswordHash,
		},
	}, logging.Component(logger, "http"), httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		CaptureTimeout:  svc.cfg.CaptureTimeout,
		AllowedOrigins:  svc.cfg.CORSAllowedOriginsList(),
	})

	if svc.cfg.BasicAuthEnabled() {
		logger.Info().Str("user", auth.NormalizeUsername(svc.cfg.APIBasicAuthUser)).Msg("basic auth enabled")
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
