package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/badu/synergy/session"
	"github.com/badu/synergy/xlog"
	"github.com/rs/zerolog"
)

func main() {
	serverAddr := flag.String("server", "localhost:24800", "server address to dial")
	name := flag.String("name", "", "screen name to present in HelloBack (required)")
	width := flag.Int("width", 1280, "local screen width, reported in Info")
	height := flag.Int("height", 800, "local screen height, reported in Info")
	debug := flag.Bool("debug", false, "enable verbose protocol tracing")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
		xlog.Debug = true
	}
	xlog.Init(os.Stderr, level)
	log := xlog.Logger()

	if *name == "" {
		log.Error().Msg("-name is required")
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", *serverAddr).Msg("dial failed")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cs, err := session.Dial(ctx, conn, *name, *width, *height)
	if err != nil {
		log.Error().Err(err).Msg("handshake failed")
		os.Exit(1)
	}
	log.Info().Str("server", *serverAddr).Str("name", *name).Msg("connected")

	go func() {
		<-sigCh
		log.Info().Msg("closing")
		cs.Close()
	}()

	for ev := range cs.Events() {
		if d, ok := ev.(session.Disconnected); ok {
			if d.Reason != nil {
				log.Warn().Err(d.Reason).Msg("disconnected")
			} else {
				log.Info().Msg("disconnected")
			}
			break
		}
		log.Debug().Str("kind", string(ev.Kind())).Msg("event")
	}
}
