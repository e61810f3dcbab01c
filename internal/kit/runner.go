// Package kit runs a decider against the Lux kit's stdin/stdout protocol.
package kit

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/client"
	"github.com/freeeve/luxbot/pkg/lux"
)

// Decider produces one turn's actions from the raw update lines.
type Decider interface {
	Begin(ctx context.Context, player, width, height int) error
	Decide(ctx context.Context, turn int, updates []string) ([]string, error)
}

// Runner drives a Decider through one game.
type Runner struct {
	in      io.Reader
	out     io.Writer
	decider Decider
}

// NewRunner creates a Runner reading kit input from in and writing actions to out.
func NewRunner(in io.Reader, out io.Writer, d Decider) *Runner {
	return &Runner{in: in, out: out, decider: d}
}

// Run plays until the input closes. A failed turn is answered with no
// actions so the game keeps going.
func (r *Runner) Run(ctx context.Context) error {
	sc := bufio.NewScanner(r.in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	w := bufio.NewWriter(r.out)

	player, width, height, err := readHeader(sc)
	if err != nil {
		return err
	}
	if err := r.decider.Begin(ctx, player, width, height); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	log.Info().Int("player", player).Int("width", width).Int("height", height).Msg("Game started")

	turn := 0
	var block []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != lux.DoneToken {
			if line != "" {
				block = append(block, line)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		actions, err := r.decider.Decide(ctx, turn, block)
		if err != nil {
			log.Error().Err(err).Int("turn", turn).Msg("Turn failed, sending no actions")
			actions = nil
		}
		fmt.Fprintln(w, strings.Join(actions, ","))
		fmt.Fprintln(w, lux.FinishToken)
		if err := w.Flush(); err != nil {
			return fmt.Errorf("write actions: %w", err)
		}
		log.Debug().Int("turn", turn).Int("actions", len(actions)).Dur("elapsed", time.Since(start)).Msg("Turn sent")

		turn++
		block = nil
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	log.Info().Int("turns", turn).Msg("Game over")
	return nil
}

func readHeader(sc *bufio.Scanner) (player, width, height int, err error) {
	if !sc.Scan() {
		return 0, 0, 0, fmt.Errorf("missing player id")
	}
	if player, err = strconv.Atoi(strings.TrimSpace(sc.Text())); err != nil {
		return 0, 0, 0, fmt.Errorf("player id: %w", err)
	}
	if !sc.Scan() {
		return 0, 0, 0, fmt.Errorf("missing map size")
	}
	f := strings.Fields(sc.Text())
	if len(f) != 2 {
		return 0, 0, 0, fmt.Errorf("map size: want 2 fields, got %q", sc.Text())
	}
	if width, err = strconv.Atoi(f[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("map width: %w", err)
	}
	if height, err = strconv.Atoi(f[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("map height: %w", err)
	}
	return player, width, height, nil
}

// LocalDecider runs a strategy in process.
type LocalDecider struct {
	strategy bot.Strategy
	player   int
	width    int
	height   int
}

// NewLocalDecider wraps a strategy.
func NewLocalDecider(s bot.Strategy) *LocalDecider {
	return &LocalDecider{strategy: s}
}

func (d *LocalDecider) Begin(_ context.Context, player, width, height int) error {
	d.player, d.width, d.height = player, width, height
	return nil
}

func (d *LocalDecider) Decide(_ context.Context, turn int, updates []string) ([]string, error) {
	gs, err := lux.DecodeUpdates(d.player, d.width, d.height, turn, updates)
	if err != nil {
		return nil, err
	}
	res := d.strategy.Decide(gs)
	out := make([]string, len(res.Actions))
	for i, a := range res.Actions {
		out[i] = string(a)
	}
	return out, nil
}

// RemoteDecider forwards each turn to a decision server.
type RemoteDecider struct {
	client  *client.Client
	variant string
	matchID string
}

// NewRemoteDecider uses c, which must already be logged in with bot scope.
func NewRemoteDecider(c *client.Client, variant string) *RemoteDecider {
	return &RemoteDecider{client: c, variant: variant}
}

func (d *RemoteDecider) Begin(ctx context.Context, player, width, height int) error {
	m, err := d.client.CreateMatch(ctx, d.variant, player, width, height)
	if err != nil {
		return err
	}
	d.matchID = m.ID
	log.Info().Str("matchId", m.ID).Str("variant", m.Variant).Msg("Remote match created")
	return nil
}

func (d *RemoteDecider) Decide(ctx context.Context, turn int, updates []string) ([]string, error) {
	t, err := d.client.SubmitTurn(ctx, d.matchID, turn, updates)
	if err != nil {
		return nil, err
	}
	return t.Actions, nil
}

// MatchID returns the server-side match, once Begin has run.
func (d *RemoteDecider) MatchID() string { return d.matchID }
