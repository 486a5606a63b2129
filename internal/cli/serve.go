package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/MikeMC777/storefront/internal/admin"
	"github.com/MikeMC777/storefront/internal/cache"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/database"
	"github.com/MikeMC777/storefront/internal/identity"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/server"
)

var withIdentityGRPC bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API under /api/v1 with swagger docs at /swagger/index.html.

With --with-identity-grpc the identity gRPC service is served from the same
process on IDENTITY_GRPC_ADDR. When IDENTITY_SERVICE_ADDR is set, checkout
validates users against that remote identity service instead of locally.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&withIdentityGRPC, "with-identity-grpc", false, "also serve the identity gRPC service")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := order.ParsePolicy(cfg.OrderStatusPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	catalogCache := cache.New(cfg.CatalogCacheTTL, time.Minute)
	defer catalogCache.Close()

	reader := catalog.NewReader(catalog.NewPGRepo(pool), catalogCache)
	ids := identity.NewService(identity.NewPGRepo(pool), identity.NewSigner(cfg.JWTSecret), cfg.SessionTTL)

	var users order.UserValidator = ids
	if cfg.IdentitySvcAddr != "" {
		client, err := identity.Dial(cfg.IdentitySvcAddr)
		if err != nil {
			return fmt.Errorf("dial identity service: %w", err)
		}
		defer client.Close()
		users = client
	}

	carts := cart.NewStore(cart.NewPGRepo(pool), reader)
	orders := order.NewService(order.NewPGRepo(pool), carts, users, policy)
	hub := admin.NewHub()
	defer hub.Close()
	orders.OnPlaced(hub)
	orders.OnStockChanged(reader.Invalidate)

	srv := &server.Server{
		Catalog:     reader,
		Identity:    ids,
		Cart:        carts,
		Orders:      orders,
		Admin:       admin.NewConsole(orders, reader, ids),
		Feed:        hub,
		APIKey:      cfg.APIKey,
		CORSOrigins: cfg.CORSOrigins,
	}

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var (
		grpcSrv *grpc.Server
		grpcLis net.Listener
	)
	if withIdentityGRPC {
		if grpcLis, err = net.Listen("tcp", cfg.IdentityGRPCAddr); err != nil {
			return err
		}
		grpcSrv = grpc.NewServer()
		identity.Register(grpcSrv, ids)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("storefront listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if grpcSrv != nil {
		g.Go(func() error {
			log.Printf("identity gRPC listening on %s", cfg.IdentityGRPCAddr)
			return grpcSrv.Serve(grpcLis)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Printf("storefront stopped")
	return nil
}
