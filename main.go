package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"roomloop/internal/auth"
	"roomloop/internal/config"
	"roomloop/internal/db"
	"roomloop/internal/handlers"
	"roomloop/internal/observability"
	"roomloop/internal/rabbitmq"
	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
	"roomloop/internal/ws"
)

const (
	serviceName     = observability.ServiceName
	shutdownTimeout = 10 * time.Second
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Real-time room relay and REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and socket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(tokenCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Printf("%s version %s (%s)\n", serviceName, cfg.Version, cfg.Environment)
			return nil
		},
	})

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := observability.NewLogger(cfg.LogLevel, os.Stdout)

			database, err := db.Connect(cmd.Context(), cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer database.Close()
			return db.Migrate(cmd.Context(), database, log)
		},
	}
}

func tokenCmd() *cobra.Command {
	var userID, username string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL).Issue(auth.Identity{ID: userID, Username: username})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "User id to embed in the token")
	cmd.Flags().StringVar(&username, "username", "", "Username to embed in the token")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.LogLevel, os.Stdout).With("service", serviceName)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, cfg.Environment, cfg.Version)
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Info("event bus ready", "mode", rabbitmq.PublisherMode(publisher), "noop_reason", rabbitmq.PublisherNoopReason(publisher))
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Environment, log)

	database, err := db.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(ctx, database, log); err != nil {
		return err
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL)

	hub := ws.NewHub(cfg.HubInboxSize, log)
	go hub.Run(ctx)
	socket := ws.NewSocketHandler(hub, verifier, cfg.AllowedOrigins(), cfg.SendBufferSize, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		ServiceName:    serviceName,
		Environment:    cfg.Environment,
		Version:        cfg.Version,
		AllowedOrigins: cfg.AllowedOrigins(),
		DebugRoutes:    cfg.DebugRoutes,
		Verifier:       verifier,
		Users:          repositories.NewUserRepo(database),
		Rooms:          repositories.NewRoomRepo(database),
		Invitations:    repositories.NewInvitationRepo(database),
		Messages:       repositories.NewMessageRepo(database),
		Reactions:      repositories.NewReactionRepo(database),
		Notifications:  repositories.NewNotificationRepo(database),
		Hub:            hub,
		Socket:         socket.Handle,
		Audit:          audit,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "environment", cfg.Environment, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", "error", err)
	}

	stop()
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
		log.Warn("socket hub did not stop in time")
	}
	return nil
}
