package root

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/config"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/sqlite"
)

// openSession opens the local database and returns the player's session.
// Game rules (timezone, discovery defaults, seed) come from PETS_* variables.
func openSession() (*service.Session, func(), error) {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := flags.dbPath
	if path == "" {
		if path, err = sqlite.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}

	reg, err := service.NewRegistry(db, events.NewBus(logger), service.Options{
		Clock:    clock.Real{},
		Location: loc,
		Seed:     cfg.Game.Seed,
		Discovery: discovery.Defaults{
			Enabled:       !cfg.Game.Discovery.Disabled,
			IntervalHours: cfg.Game.Discovery.IntervalHours,
			Chance:        cfg.Game.Discovery.Chance,
			MaxPerDay:     cfg.Game.Discovery.MaxPerDay,
		},
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	s, err := reg.Session(flags.playerID)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("opening player %q: %w", flags.playerID, err)
	}
	return s, cleanup, nil
}
