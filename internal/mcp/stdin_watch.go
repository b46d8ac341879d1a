package mcp

import (
	"context"
	"os"
	"time"

	"sprintlens/internal/logging"
)

// ParentPollInterval is how often WatchParent checks the parent PID.
var ParentPollInterval = 2 * time.Second

// WatchParent calls cancel once the process that launched the server goes
// away, which shows up as a change of the parent PID. It never reads stdin:
// the stdio transport owns it.
//
// The goroutine exits when ctx is done or after cancel has been called.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	interval := ParentPollInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
