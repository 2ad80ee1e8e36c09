package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	pb "github.com/tair/wishlist-service/api/proto/wishlist"
	_ "github.com/tair/wishlist-service/docs"
	"github.com/tair/wishlist-service/internal/config"
	"github.com/tair/wishlist-service/internal/wishlist"
	grpcDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/grpc"
	httpDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/http"
	"github.com/tair/wishlist-service/pkg/logger"
	"github.com/tair/wishlist-service/pkg/tracing"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "wishlist",
	Short:   "Wishlist service",
	Long:    `Per-user wishlists enriched from the product service, with migration of items into the cart service.`,
	Version: Version,
	// serve is the default action
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the wishlist tables or indexes for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return wishlist.Migrate(ctx, cfg)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a signed bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := wishlist.ProvideTokenValidator(cfg).GenerateToken(args[0], role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Wishlist service version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	tokenCmd.Flags().String("role", "user", "Role claim of the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// setup loads configuration and initializes the logger
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func runServe(parent context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("version", Version).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("store", cfg.StoreDriver).
		Str("cache", cfg.CacheBackend).
		Msg("Starting wishlist service")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracer
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(tracing.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.Version,
			JaegerEndpoint: cfg.JaegerEndpoint,
			SampleRatio:    cfg.TracingSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	} else {
		tracing.SetPropagator()
	}

	// Initialize dependencies with Wire DI
	app, cleanup, err := wishlist.InitializeApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize wishlist service: %w", err)
	}
	defer cleanup()

	if app.Consumer != nil {
		app.Consumer.RegisterCatalogHandlers(app.Service)
		if err := app.Consumer.Start(ctx); err != nil {
			return err
		}
	}

	httpServer := newHTTPServer(app)
	grpcServer := newGRPCServer(app)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	go func() {
		logger.Logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC server started")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Logger.Info().Msg("Shutting down servers...")
	case err = <-errCh:
		logger.Logger.Error().Err(err).Msg("Server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Logger.Error().Err(shutdownErr).Msg("HTTP server shutdown failed")
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}

	logger.Logger.Info().Msg("Servers stopped")
	return err
}

func newHTTPServer(app *wishlist.App) *http.Server {
	cfg := app.Config
	middlewareConfig := httpDelivery.DefaultMiddlewareConfig(cfg.RequestTimeout)

	// Setup router
	router := mux.NewRouter()
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	app.HTTPHandler.RegisterRoutes(router)

	// Health check endpoint
	app.HTTPHandler.RegisterHealthCheck(router, app.Store)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newGRPCServer(app *wishlist.App) *grpc.Server {
	opts := append(
		[]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())},
		grpcDelivery.ServerOptions(app.Tokens, app.Config.GRPCTrustUserHeader)...,
	)
	grpcServer := grpc.NewServer(opts...)

	pb.RegisterWishlistServiceServer(grpcServer, app.GRPCServer)

	return grpcServer
}
