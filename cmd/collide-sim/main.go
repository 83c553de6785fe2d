// cmd/collide-sim/main.go
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	steps := flag.Int("steps", 600, "Number of steps to run; 0 runs in real time until interrupted")
	entities := flag.Int("entities", 64, "Number of moving instances")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for the scene")
	ascii := flag.Int("ascii", 0, "Print an ASCII frame every N steps (0 disables)")
	healthAddr := flag.String("health", os.Getenv("COLLIDE_HEALTH_ADDR"), "Address for /health and /ready probes (empty disables)")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}

	sim, err := newSimulation(cfg, logger, *entities, rand.New(rand.NewSource(*seed)))
	if err != nil {
		logger.Error(ctx, "Failed to build scene", err, "seed", *seed)
		os.Exit(1)
	}
	if *ascii > 0 {
		sim.enableASCII(os.Stdout, *ascii)
	}
	logger.Info(ctx, "Simulation ready",
		"instances", sim.room.Len(),
		"seed", *seed,
		"width", cfg.Room.Width,
		"height", cfg.Room.Height,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *healthAddr != "" {
		checker := sim.healthChecker()
		go func() {
			logger.Info(ctx, "Starting health check server", "address", *healthAddr)
			if err := checker.Serve(ctx, *healthAddr); err != nil {
				logger.Error(ctx, "Health check server failed", err)
			}
		}()
	}

	var totals summary
	if *steps > 0 {
		totals = sim.runSteps(ctx, *steps)
	} else {
		totals = sim.runRealtime(ctx)
	}
	totals.log(ctx, logger)
}

// loadConfig reads path when it exists, falls back to the defaults otherwise,
// and applies environment overrides.
func loadConfig(path string, logger *logging.Logger) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(context.Background(), "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
