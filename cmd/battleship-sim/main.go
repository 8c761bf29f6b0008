package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/krishanu7/battleship-engine/config"
	"github.com/krishanu7/battleship-engine/internal/events"
	"github.com/krishanu7/battleship-engine/internal/game"
	"github.com/krishanu7/battleship-engine/internal/ranking"
	"github.com/krishanu7/battleship-engine/internal/session"
	"github.com/krishanu7/battleship-engine/internal/store"
	rdbPkg "github.com/krishanu7/battleship-engine/pkg/redis"
)

type summary struct {
	games      int
	playerWins int
	cpuWins    int
	shots      int
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	games := flag.Int("games", cfg.SimGames, "number of games to simulate")
	seed := flag.Int64("seed", cfg.Seed, "random seed (0 seeds from the clock)")
	players := flag.Int("players", 3, "number of simulated player names")
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	svc, closeFn, err := buildService(ctx, cfg, *seed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer closeFn()

	log.Info().Int("games", *games).Int64("seed", *seed).Msg("simulation starting")
	rng := rand.New(rand.NewSource(*seed + 1))
	var sum summary
	for i := 0; i < *games && ctx.Err() == nil; i++ {
		name := fmt.Sprintf("sim-%d", i%max(*players, 1)+1)
		g, err := playGame(ctx, svc, name, rng)
		if err != nil {
			log.Error().Err(err).Int("game", i+1).Msg("game aborted")
			continue
		}
		sum.games++
		sum.shots += len(g.PlayerBoard.ShotsReceived) + len(g.CPUBoard.ShotsReceived)
		if g.Winner == game.SidePlayer {
			sum.playerWins++
		} else {
			sum.cpuWins++
		}
	}

	avg := 0.0
	if sum.games > 0 {
		avg = float64(sum.shots) / float64(sum.games)
	}
	log.Info().
		Int("games", sum.games).
		Int("playerWins", sum.playerWins).
		Int("cpuWins", sum.cpuWins).
		Float64("avgShots", avg).
		Msg("simulation finished")

	top, err := svc.Ranking(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to read ranking")
		return
	}
	for i, e := range top {
		log.Info().Int("rank", i+1).Str("player", e.Player).Int64("wins", e.Wins).Int64("played", e.Played).Msg("ranking")
	}
}

// buildService wires Redis-backed collaborators when an address is
// configured and in-memory ones otherwise.
func buildService(ctx context.Context, cfg config.Config, seed int64) (*session.Service, func(), error) {
	opts := []session.Option{session.WithRand(rand.New(rand.NewSource(seed)))}
	if cfg.RedisAddr == "" {
		log.Info().Msg("no redis_addr configured, keeping games in memory")
		svc := session.NewService(store.NewMemoryStore(), ranking.NewMemory(), events.Nop{}, log.Logger, opts...)
		return svc, func() {}, nil
	}

	rdb, err := rdbPkg.NewRedisClient(ctx, rdbPkg.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	svc := session.NewService(
		store.NewRedisStore(rdb, cfg.GameTTL, log.Logger),
		ranking.NewService(rdb, cfg.RankingKey),
		events.NewRedisPublisher(rdb, cfg.EventsChannel),
		log.Logger,
		opts...,
	)
	return svc, func() { _ = rdb.Close() }, nil
}

// playGame runs one game to completion; the player side is driven by the
// same targeting AI as the CPU.
func playGame(ctx context.Context, svc *session.Service, name string, rng *rand.Rand) (*game.Game, error) {
	g, err := svc.CreateGame(ctx, name)
	if err != nil {
		return nil, err
	}
	fleet, err := game.RandomFleet(rng)
	if err != nil {
		return nil, err
	}
	if g, err = svc.SubmitFleet(ctx, g.ID, fleet); err != nil {
		return nil, err
	}

	for g.Status == game.StatusPlaying {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g.Turn == game.SideCPU {
			if g, err = svc.CPUMove(ctx, g.ID); err != nil {
				return nil, err
			}
			continue
		}
		target, err := game.NextTarget(&g.CPUBoard, rng)
		if err != nil {
			return nil, err
		}
		if g, err = svc.PlayerMove(ctx, g.ID, target.String()); err != nil {
			return nil, err
		}
	}
	log.Debug().Str("gameId", g.ID).Str("player", name).Str("winner", string(g.Winner)).Msg("game finished")
	return g, nil
}
