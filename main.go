package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xackery/launchdemo/cmd"
	"github.com/xackery/launchdemo/config"
)

var (
	Version    string
	PatcherUrl string
)

func main() {
	PatcherUrl = strings.TrimSuffix(PatcherUrl, "/")
	if PatcherUrl != "" {
		config.DefaultBaseURL = PatcherUrl
	}
	if Version == "" {
		Version = "dev"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx, Version)
	if err != nil {
		fmt.Println("Failed:", err)
		stop()
		os.Exit(1)
	}
}
