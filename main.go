package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/evoframe/rulekit/agent"
	"github.com/evoframe/rulekit/ipc"
	"github.com/evoframe/rulekit/persist"
)

const banner = `
██████╗ ██╗   ██╗██╗     ███████╗██╗  ██╗██╗████████╗
██╔══██╗██║   ██║██║     ██╔════╝██║ ██╔╝██║╚══██╔══╝
██████╔╝██║   ██║██║     █████╗  █████╔╝ ██║   ██║
██╔══██╗██║   ██║██║     ██╔══╝  ██╔═██╗ ██║   ██║
██║  ██║╚██████╔╝███████╗███████╗██║  ██╗██║   ██║
╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝   ╚═╝

Evolved-Policy Evaluation Sidecar`

func main() {
	socketPath := flag.String("socket", "/tmp/rulekit.sock", "unix socket to listen on")
	rulesPath := flag.String("ruleset", "", "default rule-set file, hot-reloaded on change")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting rulekit")

	store := agent.NewStore(nil)
	if *rulesPath != "" {
		set, err := persist.Load(*rulesPath)
		if err != nil {
			slog.Error("failed to load rule set", "path", *rulesPath, "error", err)
			os.Exit(1)
		}
		store.Set(set)
		slog.Info("rule set loaded", "path", *rulesPath, "uid", set.UID, "rules", len(set.Rules))
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *rulesPath != "" {
		go func() {
			if err := agent.NewReloader(*rulesPath, store).Start(ctx); err != nil {
				slog.Error("reloader failed", "error", err)
			}
		}()
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(conn, store)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(conn net.Conn, store *agent.Store) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(c, store)
	c.RegisterHandler(ipc.TypeBind, a.HandleBind)
	c.RegisterHandler(ipc.TypeObserve, a.HandleObserve)
	c.RegisterHandler(ipc.TypeRender, a.HandleRender)
	c.ReadLoop()
}
