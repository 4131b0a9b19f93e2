package server

import (
	"context"
	"time"
)

// runJanitor purges expired refresh-token sessions every interval until ctx
// is done.
func (app *App) runJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.purgeExpiredSessions(ctx)
		}
	}
}

func (app *App) purgeExpiredSessions(ctx context.Context) {
	n, err := app.ledger.PurgeExpired(ctx)
	if err != nil {
		app.logger.Error(ctx, "purging expired sessions failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Info(ctx, "purged expired sessions", "count", n)
	}
}
