package httpapi

import (
	"context"
	"net/http"
	"time"
)

// serverBaseCtx is a process-level context canceled on shutdown, so in-flight
// generation stops when the daemon exits. Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context from a that is additionally canceled when b
// is done. The returned cancel must be called when the handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// requestContext joins the server base context with the request context and
// applies the configured generation timeout.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	if generateTimeoutSec <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(generateTimeoutSec)*time.Second)
	return tctx, func() {
		tcancel()
		cancel()
	}
}
