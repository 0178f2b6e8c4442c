package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopcart-labs/recommendations/internal/app"
	"github.com/shopcart-labs/recommendations/internal/config"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: recommendations [serve|migrate] [-config path]

commands:
  serve     run the HTTP API (default)
  migrate   create or update the database schema and exit
`

func main() {
	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML config file (default $RECS_CONFIG or config.yaml)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := config.AppConfig{ConfigPath: *configPath}
	var err error
	switch command {
	case "serve":
		err = app.RunServer(ctx, appCfg)
	case "migrate":
		err = app.Migrate(ctx, appCfg)
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Error("recommendations exited")
		stop()
		os.Exit(1)
	}
}
