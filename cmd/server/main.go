// Command shopfloor-server starts the shopfloor gRPC and HTTP servers.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/shopfloor/internal/api"
	"github.com/and161185/shopfloor/internal/audit"
	"github.com/and161185/shopfloor/internal/config"
	"github.com/and161185/shopfloor/internal/migrate"
	"github.com/and161185/shopfloor/internal/repository"
	"github.com/and161185/shopfloor/internal/repository/memory"
	"github.com/and161185/shopfloor/internal/repository/postgres"
	grpcserver "github.com/and161185/shopfloor/internal/server/grpc"
	httpserver "github.com/and161185/shopfloor/internal/server/http"
	"github.com/and161185/shopfloor/internal/service"
	"github.com/and161185/shopfloor/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type stores struct {
	users repository.UserRepository
	items repository.InventoryRepository
	audit repository.AuditRepository
	close func()
}

// main loads configuration, opens the stores, and serves gRPC and HTTP until a signal arrives.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.GRPCAddr),
		zap.String("store", cfg.Store),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.close()

	sinks := audit.Multi{st.audit}
	if cfg.RedisURL != "" {
		rdb, err := audit.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		sinks = append(sinks, audit.NewRedisSink(rdb, cfg.AuditStream))
	}
	rec := audit.NewRecorder(sinks, logger)

	// Services
	tokens := token.NewIssuer([]byte(cfg.JWTKey), cfg.AccessTTL)
	authSvc := service.NewAuthService(st.users, tokens, cfg.Lockout(), rec, logger)
	stockSvc := service.NewStockService(st.items, rec, logger)

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.MetricsUnary(),
			grpcserver.AuthUnary(tokens),
		),
	}
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("serving gRPC without TLS")
	}
	s := grpc.NewServer(opts...)

	app := grpcserver.New(authSvc, stockSvc, tokens, grpcserver.WithOpenRegistration(cfg.OpenReg))
	api.RegisterShopfloorServer(s, app)

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr), zap.Bool("tls", cfg.TLS()))
		errCh <- s.Serve(lis)
	}()

	var hsrv *http.Server
	if cfg.HTTPAddr != "" {
		h := httpserver.New(authSvc, stockSvc, tokens, logger, cfg.OpenReg).WithAuditTrail(st.audit)
		hsrv = &http.Server{Addr: cfg.HTTPAddr, Handler: h.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			var err error
			if cfg.TLS() {
				err = hsrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			} else {
				err = hsrv.ListenAndServe()
			}
			if !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		if hsrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = hsrv.Shutdown(sctx)
			cancel()
		}
		// graceful shutdown
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		st.close()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// openStores selects the persistence backend. Postgres is migrated before use.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		return &stores{
			users: memory.NewUsers(),
			items: memory.NewInventory(),
			audit: memory.NewAudit(),
			close: func() {},
		}, nil
	}

	if _, err := migrate.Up(ctx, cfg.DSN, log); err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		users: postgres.NewUserRepo(db),
		items: postgres.NewInventoryRepo(db),
		audit: postgres.NewAuditRepo(db),
		close: db.Pool.Close,
	}, nil
}
