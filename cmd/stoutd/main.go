// Command stoutd is the minimal CLI front end that wires a TOML profile
// (internal/confload) to the core ingestion server and its backends.
// spec.md names both the process supervisor and the config loader as
// external collaborators with no defined interface beyond "it exists";
// this binary is the concrete, runnable one this module supplies.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/sirupsen/logrus"

	"github.com/softwaregravy/stout"
	"github.com/softwaregravy/stout/internal/confload"
)

func main() {
	configPath := flag.String("config", "stout.toml", "path to a TOML configuration profile")
	flag.Parse()

	logger := stout.DefaultLogger()

	if err := run(*configPath, logger); err != nil {
		logger.WithError(err).Fatal("stout: fatal error")
	}
}

func run(configPath string, logger *logrus.Logger) error {
	loaded, err := confload.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	port := loaded.ServerPort
	if port == 0 {
		port = stout.DefaultPort
	}
	srvCfg := stout.NewServerConfig(port)
	if loaded.FlushPeriodS > 0 {
		if _, err := srvCfg.FlushEvery(loaded.FlushPeriodS); err != nil {
			return fmt.Errorf("server config: %w", err)
		}
	}
	srvCfg.WithLogger(logger)

	if loaded.ConsoleBackend {
		srvCfg.AddBackend(stout.ConsoleBackend(os.Stdout))
	}
	if loaded.FileBackendPath != "" {
		srvCfg.AddBackend(stout.FileBackend(loaded.FileBackendPath))
	}
	if loaded.JSONBackendPath != "" {
		srvCfg.AddBackend(stout.JSONFileBackend(loaded.JSONBackendPath))
	}

	var ddClient *statsd.Client
	if loaded.DatadogAddr != "" {
		ddClient, err = statsd.New(loaded.DatadogAddr, statsd.WithNamespace("stout."))
		if err != nil {
			return fmt.Errorf("dogstatsd client: %w", err)
		}
		defer ddClient.Close()
		srvCfg.AddBackend(stout.DatadogForwardBackend(ddClient, logger))
	}

	monitor := stout.NewMonitoringBackend(loaded.Core, logger, func() { os.Exit(1) })
	srvCfg.AddBackend(monitor.Backend())

	srvCfg.AddServerListener(func(ev stout.ServerEvent) {
		logger.WithField("event", ev.String()).Info("stout: server event")
	})

	self := stout.NewSelfStats(ddClient, logger)
	server := stout.NewServer(srvCfg, self, nil)

	return server.Run()
}
