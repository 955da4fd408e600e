package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopstock/shopstock/config"
	"github.com/shopstock/shopstock/internal/adminapi"
	"github.com/shopstock/shopstock/internal/app"
	"github.com/shopstock/shopstock/internal/webserver"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	tokenUID = flag.Int64("token", 0, "print an access token for this user id and exit")
	tokenSID = flag.Int64("shop", 0, "shop id carried by the token printed with -token")
	tokenTTL = flag.Duration("ttl", 24*time.Hour, "lifetime of the token printed with -token")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if *tokenUID > 0 {
		token, err := webserver.IssueToken(cfg.Auth.JwtSecret, *tokenUID, *tokenSID, *tokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.Init()

	errCh := make(chan error, 1)
	go func() {
		errCh <- webserver.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("admin server stopped: %v", err)
		}
	case sig := <-quit:
		zap.S().Infof("received %s, shutting down", sig)
		if err := webserver.Shutdown(10 * time.Second); err != nil {
			zap.S().Errorf("admin server shutdown: %v", err)
		}
	}
}
