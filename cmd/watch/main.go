// Command watch follows a game served with -spectate from another terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"blockfall/config"
	"blockfall/server"
	"blockfall/terminal"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "address of the game")
	name := flag.String("name", "spectator", "name shown to the player")
	logFile := flag.String("log", "", "log file")
	flag.Parse()

	logger, closeLog, err := config.Log{File: *logFile, Level: "debug"}.NewLogger()
	if err != nil {
		log.Fatalf("unable to open log: %v", err)
	}
	defer closeLog()

	conn, err := server.Dial(*addr)
	if err != nil {
		log.Fatalf("unable to connect: %v", err)
	}
	defer conn.Close()

	r, err := terminal.NewRenderer(os.Stdout, logger, terminal.RenderOptions{Ghost: true, Name: *addr})
	if err != nil {
		log.Fatalf("unable to create renderer: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Print(terminal.HideCursor)
	defer fmt.Print(terminal.ShowCursor)

	snapCh, errCh := server.NewClient(conn, logger).Watch(ctx, *name)
	for snap := range snapCh {
		if err := r.Render(snap); err != nil {
			logger.Error("unable to render", slog.String("error", err.Error()))
			cancel()
		}
	}
	if err := <-errCh; err != nil {
		fmt.Print(terminal.ShowCursor)
		log.Fatalf("watch ended: %v", err)
	}
}
