package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

func (app *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if panic := recover(); panic != nil {
				ctx := wrap.WithAction(r.Context(), "recover_panic")
				err := fmt.Errorf("%v", panic)
				app.log.Error(ctx, "panic while serving request", err, "path", r.URL.Path, "stack", string(debug.Stack()))

				w.Header().Set("Connection", "close")
				reject(w, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
