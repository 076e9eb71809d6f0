package client

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
)

// Launch brings the installation up to date when the aggregate check fails and,
// when play is set and a game executable is configured, starts the game.
// The returned report is nil when no update ran.
func (c *Client) Launch(ctx context.Context, play bool) (*Report, error) {
	var report *Report

	updated, err := c.IsUpdated(ctx)
	if err != nil {
		return nil, fmt.Errorf("is updated: %w", err)
	}
	if !updated {
		report, err = c.UpdateGame(ctx)
		if err != nil {
			return nil, fmt.Errorf("update game: %w", err)
		}
	}

	if !play {
		return report, nil
	}
	if c.cfg.GameExe == "" {
		c.log.Info("No game executable configured, skipping launch")
		return report, nil
	}

	err = c.startGame()
	if err != nil {
		return report, fmt.Errorf("start game: %w", err)
	}
	return report, nil
}

func (c *Client) startGame() error {
	exe := filepath.Join(c.root, c.cfg.GameExe)
	c.log.Info("Launching game", slog.String("exe", exe), slog.String("dir", c.root))

	cmd := exec.Command(exe, c.cfg.GameArgs...)
	cmd.Dir = c.root
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("run %s: %w", exe, err)
	}
	return cmd.Process.Release()
}
