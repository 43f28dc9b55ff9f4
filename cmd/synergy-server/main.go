package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/badu/synergy/diag"
	"github.com/badu/synergy/layout"
	"github.com/badu/synergy/router"
	"github.com/badu/synergy/session"
	"github.com/badu/synergy/xlog"
	"github.com/rs/zerolog"
)

// clientFlag accumulates -client flag values as "name:edge" pairs, a
// repeatable flag.Value for a layout that needs an arbitrary number of
// client screens.
type clientFlag []string

func (c *clientFlag) String() string { return strings.Join(*c, ",") }

func (c *clientFlag) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func edgeFromString(s string) (layout.Position, error) {
	switch strings.ToLower(s) {
	case "left":
		return layout.Left, nil
	case "right":
		return layout.Right, nil
	case "top":
		return layout.Top, nil
	case "bottom":
		return layout.Bottom, nil
	default:
		return 0, fmt.Errorf("unknown edge %q (want left/right/top/bottom)", s)
	}
}

func buildLayout(width, height int, clients clientFlag) (*layout.Layout, error) {
	b := layout.NewBuilder(width, height)
	for _, c := range clients {
		name, edge, ok := strings.Cut(c, ":")
		if !ok {
			return nil, fmt.Errorf("-client %q: want NAME:EDGE", c)
		}
		pos, err := edgeFromString(edge)
		if err != nil {
			return nil, fmt.Errorf("-client %q: %w", c, err)
		}
		b.AddClient(name, pos)
	}
	return b.Build()
}

// mover is the stubbed host-input source: a ticker-driven synthetic
// pointer sweep standing in for real device capture, which is out of
// scope here.
func mover(ctx context.Context, rt *router.Server) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	dir := 1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.SendInput(router.InputEvent{Kind: router.InputMove, DX: 4 * dir, DY: 0})
			dir = -dir
		}
	}
}

func logEvents(ctx context.Context, rt *router.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rt.Events():
			if !ok {
				return
			}
			xlog.Logger().Info().Str("client", ev.Client).Str("kind", string(ev.Event.Kind())).Msg("client event")
		case ev, ok := <-rt.Local():
			if !ok {
				return
			}
			xlog.Debugf("local passthrough: %v", ev.Kind)
		}
	}
}

func logDiag(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, err := diag.Collect(ctx, 0)
			if err != nil {
				xlog.Logger().Warn().Err(err).Msg("diag collect failed")
				continue
			}
			xlog.Logger().Info().
				Float64("cpu_pct", s.CPUPercent).
				Float64("mem_pct", s.MemUsedPct).
				Uint64("mem_used_mb", s.MemUsedMB).
				Msg("host load")
		}
	}
}

func main() {
	listenAddr := flag.String("listen", ":24800", "address to listen on")
	width := flag.Int("width", 1920, "server screen width")
	height := flag.Int("height", 1080, "server screen height")
	keepAlive := flag.Duration("keepalive", session.DefaultKeepAlive, "T_keepalive interval")
	debug := flag.Bool("debug", false, "enable verbose protocol tracing")
	var clients clientFlag
	flag.Var(&clients, "client", "NAME:EDGE, repeatable (left/right/top/bottom)")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
		xlog.Debug = true
	}
	xlog.Init(os.Stderr, level)
	log := xlog.Logger()

	l, err := buildLayout(*width, *height, clients)
	if err != nil {
		log.Error().Err(err).Msg("layout build failed")
		os.Exit(1)
	}

	rt := router.NewServer(l, router.WithSessionOptions(session.WithKeepAlive(*keepAlive)))

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", *listenAddr).Msg("listen failed")
		os.Exit(1)
	}
	log.Info().Str("addr", *listenAddr).Msg("listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
		ln.Close()
	}()

	go mover(ctx, rt)
	go logEvents(ctx, rt)
	go logDiag(ctx, 30*time.Second)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Warn().Err(err).Msg("accept failed")
				continue
			}
		}
		go func() {
			if err := rt.Accept(ctx, conn); err != nil {
				log.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("handshake rejected")
			}
		}()
	}
}
