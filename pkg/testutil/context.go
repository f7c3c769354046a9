package testutil

import (
	"context"
	"net/http"
	"time"

	"alyra/pkg/domain"
	"alyra/pkg/requestcontext"
)

// AsIdentity attaches a caller identity the way the bearer-token middleware
// would. An unparseable identity leaves the request anonymous.
func AsIdentity(req *http.Request, identity string) *http.Request {
	id, err := domain.ParseIdentity(identity)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithIdentity(req.Context(), id))
}

// CallerContext returns a context carrying identity and a fixed request time.
func CallerContext(identity domain.Identity, now time.Time) context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), identity)
	return requestcontext.WithTime(ctx, now)
}
