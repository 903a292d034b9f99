package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
	"google.golang.org/grpc"

	"blockfall/audio"
	"blockfall/config"
	"blockfall/server"
	"blockfall/terminal"
	"blockfall/tetris"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	o, err := flags.Load()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}
	logger, closeLog, err := o.Log.NewLogger()
	if err != nil {
		log.Fatalf("unable to open log: %v", err)
	}

	err = run(o, logger)
	if err != nil {
		logger.Error("game ended with an error", slog.String("error", err.Error()))
	}
	if err := closeLog(); err != nil {
		log.Printf("unable to close log: %v", err)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(o config.Options, logger *slog.Logger) error {
	if err := checkTerminal(o.Game); err != nil {
		return err
	}

	player := audio.NewPlayer(audio.Options{
		Enabled: o.Audio.Enabled,
		Volume:  o.Audio.Volume,
		Music:   o.Audio.Music,
		Logger:  logger,
	})
	if err := player.Start(); err != nil {
		return fmt.Errorf("unable to start audio: %w", err)
	}
	defer player.Close()

	so := tetris.SessionOptions{Sink: player, Logger: logger}
	if o.Seed != 0 {
		so.Rand = rand.New(rand.NewPCG(o.Seed, o.Seed))
	}
	session := tetris.NewSession(o.Game, so)

	renderer, err := terminal.NewRenderer(os.Stdout, logger, terminal.RenderOptions{
		Ghost: o.Ghost,
		Name:  o.Spectate.Name,
	})
	if err != nil {
		return err
	}
	ro := terminal.Options{
		Display: renderer,
		Sound:   player,
		Logger:  logger,
	}

	if o.Spectate.Address != "" {
		feed, stop, err := serveSpectators(o.Spectate.Address, logger)
		if err != nil {
			return err
		}
		defer stop()
		ro.Publisher = feed
	}

	keys, err := keyboard.GetKeys(20)
	if err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}()
	ro.Keys = keys

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Print(terminal.HideCursor)
	defer fmt.Print(terminal.ShowCursor)
	return terminal.NewRunner(session, ro).Run(ctx)
}

// checkTerminal makes sure stdout is a terminal big enough for the board.
func checkTerminal(cfg tetris.Config) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdout is not a terminal")
	}
	cols, lines, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("unable to get the terminal size: %w", err)
	}
	wantCols, wantLines := terminal.Size(cfg.Width, cfg.Height)
	if cols < wantCols || lines < wantLines {
		return fmt.Errorf("the terminal is %dx%d, the game needs at least %dx%d", cols, lines, wantCols, wantLines)
	}
	return nil
}

// serveSpectators starts the spectator server on addr. The returned func
// ends every Watch stream and stops the server.
func serveSpectators(addr string, logger *slog.Logger) (*server.Feed, func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen: %w", err)
	}
	feed := server.NewFeed(logger)
	s := grpc.NewServer()
	server.New(feed, logger).Register(s)

	go func() {
		logger.Info("spectator server listening", slog.String("address", lis.Addr().String()))
		if err := s.Serve(lis); err != nil {
			logger.Error("failed to serve", slog.String("error", err.Error()))
		}
	}()

	return feed, func() {
		feed.Close()
		s.GracefulStop()
	}, nil
}
