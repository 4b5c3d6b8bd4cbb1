package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/guidebook/internal/ctxutil"
)

// RootContext returns the context commands run under. It is cancelled on
// interrupt and carries the invoking actor for the audit log.
func RootContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctxutil.WithActorID(ctx, ctxutil.DefaultActor()), stop
}
