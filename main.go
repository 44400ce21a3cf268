package main

import (
	"context"
	"fairwaydesk/app/client/appdb"
	"fairwaydesk/app/client/zoho"
	"fairwaydesk/app/config"
	"fairwaydesk/app/service/dialog"
	"fairwaydesk/app/service/gateway"
	"fairwaydesk/app/service/knowledge"
	"fairwaydesk/app/service/session"
	"fairwaydesk/app/service/task"
	"fairwaydesk/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, appdb.NewClient)
	do.Provide(di, zoho.NewClient)
	do.Provide(di, knowledge.New)
	do.Provide(di, session.New)
	do.Provide(di, task.New)
	do.Provide(di, dialog.New)
	do.Provide(di, gateway.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*gateway.Service](di).Run(appCtx)

	<-appCtx.Done()
}
