package cli

import (
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/database"
	"github.com/MikeMC777/storefront/internal/identity"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Start the standalone identity gRPC service",
	RunE:  runIdentity,
}

func init() {
	rootCmd.AddCommand(identityCmd)
}

func runIdentity(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.PostgresDSN == "" {
		return errors.New("missing required configuration: POSTGRES_DSN")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	ids := identity.NewService(identity.NewPGRepo(pool), identity.NewSigner(cfg.JWTSecret), cfg.SessionTTL)

	lis, err := net.Listen("tcp", cfg.IdentityGRPCAddr)
	if err != nil {
		return err
	}
	srv := grpc.NewServer()
	identity.Register(srv, ids)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	log.Printf("identity-service listening on %s", cfg.IdentityGRPCAddr)
	return srv.Serve(lis)
}
