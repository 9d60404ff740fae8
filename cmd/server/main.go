package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/udap-tools/udap-client-app/flows"
	"github.com/udap-tools/udap-client-app/internal/config"
	"github.com/udap-tools/udap-client-app/server"
	"github.com/udap-tools/udap-client-app/servers"
	"github.com/udap-tools/udap-client-app/servers/filerepo"
	"github.com/udap-tools/udap-client-app/sessions"
	"github.com/udap-tools/udap-client-app/udap/udaphttp"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running server: %s\n", err)
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	// An unreadable or corrupt registry file is fatal; an absent one just
	// means a server must be added before anything else works.
	registry, err := servers.Load(filerepo.New(c.GetServerFile()))
	if err != nil {
		return fmt.Errorf("loading server registry: %w", err)
	}
	if registry.MustAddServer() {
		log.Printf("No UDAP servers configured yet, add one via the UI\n")
	}

	sessionRepo := sessions.NewInMemoryRepo()
	flowService, err := flows.NewService(flows.IdentityFromConfig(c), registry, sessionRepo, udaphttp.New)
	if err != nil {
		return fmt.Errorf("creating flow service: %w", err)
	}

	handler, err := server.New(c, flowService, sessionRepo)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	httpServer := &http.Server{Addr: ":" + c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
