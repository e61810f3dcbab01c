package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/client"
	"github.com/freeeve/luxbot/internal/model"
	"github.com/freeeve/luxbot/internal/service"
)

func main() {
	url := flag.String("url", "http://localhost:8009", "server base URL")
	name := flag.String("name", "watcher", "observer client name")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	matchIDs := flag.Args()
	if len(matchIDs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: watch [flags] MATCH_ID...")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	c := client.New(*name, *url)
	if err := c.Login(ctx, auth.ScopeObserver); err != nil {
		log.Fatal().Err(err).Msg("Login failed")
	}
	if err := c.ConnectWS(ctx); err != nil {
		log.Fatal().Err(err).Msg("WebSocket connect failed")
	}
	defer c.CloseWS()
	for _, id := range matchIDs {
		if err := c.SubscribeMatch(id); err != nil {
			log.Fatal().Err(err).Str("matchId", id).Msg("Subscribe failed")
		}
	}
	log.Info().Strs("matches", matchIDs).Msg("Watching")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.Events():
			if !ok {
				log.Info().Msg("Connection closed")
				return
			}
			printEvent(ev)
		}
	}
}

func printEvent(ev client.WSEvent) {
	switch ev.Type {
	case service.EventTurnDecided:
		var t model.Turn
		if err := json.Unmarshal(ev.Data, &t); err != nil {
			log.Warn().Err(err).Msg("Bad turn event")
			return
		}
		fmt.Printf("%s turn %3d  %5.2fms  passes %d  unresolved %d  %s\n",
			short(ev.MatchID), t.Turn, t.DecisionMs, t.Passes, t.Unresolved, strings.Join(t.Actions, ","))
	case service.EventMatchFinished:
		fmt.Printf("%s finished\n", short(ev.MatchID))
	default:
		log.Debug().Str("type", ev.Type).Str("matchId", ev.MatchID).Msg("Event")
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
