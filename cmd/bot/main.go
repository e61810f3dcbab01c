package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/client"
	"github.com/freeeve/luxbot/internal/config"
	"github.com/freeeve/luxbot/internal/kit"
	"github.com/freeeve/luxbot/internal/logger"
)

func main() {
	// stdout carries the kit protocol, so logs go to stderr or LOG_FILE.
	logger.InitTo(os.Stderr)
	cfg := config.Load()

	variant := flag.String("variant", cfg.BotVariant, "policy variant")
	policyFile := flag.String("policy", cfg.PolicyFile, "policy YAML file")
	url := flag.String("url", "", "decision server base URL; empty decides in process")
	name := flag.String("name", "kit-bot", "client name when using a server")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	var decider kit.Decider
	finish := func() {}
	if *url == "" {
		var policies map[string]bot.Policy
		if *policyFile != "" {
			var err error
			if policies, err = bot.LoadPolicies(*policyFile); err != nil {
				log.Fatal().Err(err).Str("file", *policyFile).Msg("Failed to load policies")
			}
		}
		decider = kit.NewLocalDecider(bot.StrategyForVariant(*variant, policies))
	} else {
		c := client.New(*name, *url)
		if err := c.Login(ctx, auth.ScopeBot); err != nil {
			log.Fatal().Err(err).Str("url", *url).Msg("Login failed")
		}
		remote := kit.NewRemoteDecider(c, *variant)
		finish = func() {
			if remote.MatchID() == "" {
				return
			}
			if err := c.FinishMatch(context.Background(), remote.MatchID()); err != nil {
				log.Warn().Err(err).Msg("Failed to finish match")
			}
		}
		decider = remote
	}

	err := kit.NewRunner(os.Stdin, os.Stdout, decider).Run(ctx)
	finish()
	if err != nil {
		log.Error().Err(err).Msg("Bot stopped")
		cancel()
		os.Exit(1)
	}
}
