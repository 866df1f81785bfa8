// Command thing-server runs the example Things over CoAP.
//
// Usage:
//
//	thing-server [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-addr string       Listen address (default ":5683")
//	-multi             Serve the lamp and the humidity sensor as a
//	                   multi-thing registry instead of the lamp alone
//	-log-level string  Log level: debug, info, warn, error
//	-interactive       Start the interactive console
//
// Examples:
//
//	# Single lamp on the default CoAP port
//	thing-server
//
//	# Lamp + humidity sensor with a console
//	thing-server -multi -interactive -log-level debug
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coapthing/coapthing-go/pkg/config"
	"github.com/coapthing/coapthing-go/pkg/examples"
	"github.com/coapthing/coapthing-go/pkg/model"
	"github.com/coapthing/coapthing-go/pkg/registry"
	"github.com/coapthing/coapthing-go/pkg/service"
)

func main() {
	var (
		configFile    = flag.String("config", "", "configuration file path")
		addr          = flag.String("addr", "", "listen address")
		multi         = flag.Bool("multi", false, "serve multiple things")
		logLevel      = flag.String("log-level", "", "log level: debug, info, warn, error")
		interactiveUI = flag.Bool("interactive", false, "start the interactive console")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "thing-server: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	lamp := examples.Lamp()
	stop := make(chan struct{})

	var things registry.Registry
	if *multi {
		sensor := examples.HumiditySensor()
		go examples.RunHumiditySensor(sensor, 3*time.Second, stop)
		things = registry.NewMultipleThings([]*model.Thing{lamp, sensor}, "LightAndTempDevice")
	} else {
		things = registry.NewSingleThing(lamp)
	}

	server := service.NewServer(things, service.Config{
		Address:          cfg.Address,
		BasePath:         cfg.BasePath,
		Host:             cfg.Host,
		ServiceName:      cfg.ServiceName,
		DisableAdvertise: cfg.DisableAdvertise,
		Logger:           logger,
	})

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "thing-server: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server started", "address", cfg.Address, "multi", *multi)

	if *interactiveUI {
		console, err := newConsole(things)
		if err != nil {
			fmt.Fprintf(os.Stderr, "thing-server: %v\n", err)
			os.Exit(1)
		}
		console.run()
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
	}

	close(stop)
	logger.Info("shutting down")
	if err := server.Stop(false); err != nil {
		logger.Error("shutdown failed", "err", err)
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
