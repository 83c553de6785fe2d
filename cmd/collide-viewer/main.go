// cmd/collide-viewer/main.go
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-quadcollide/pkg/config"
	"github.com/opd-ai/go-quadcollide/pkg/logging"
	engorender "github.com/opd-ai/go-quadcollide/pkg/render/engo"
	"github.com/opd-ai/go-quadcollide/pkg/room"
	"github.com/opd-ai/go-quadcollide/pkg/scenario"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	entities := flag.Int("entities", 64, "Number of moving instances")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for the scene")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flag.Parse()

	var cfg *config.Config
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
	}
	// Contacts are only collected in debug mode.
	cfg.Debug = true
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	populate := func(r *room.Room) error {
		s := scenario.New(r)
		if err := s.AddWalls(); err != nil {
			return err
		}
		if err := s.Populate(*entities, rng); err != nil {
			return err
		}
		s.Attach()
		return nil
	}

	scene := engorender.NewViewerScene(cfg, populate, logger)

	opts := engo.RunOptions{
		Title:      "Quadtree Collision Viewer",
		Width:      int(cfg.Room.Width),
		Height:     int(cfg.Room.Height),
		Fullscreen: *fullscreen,
		VSync:      true,
		FPSLimit:   cfg.Room.StepRate,
	}

	logger.Info(ctx, "Starting viewer",
		"seed", *seed,
		"entities", *entities,
		"controls", "space=pause n=step t=tree c=contacts e/q=zoom r=reset",
	)
	engo.Run(opts, scene)
}
