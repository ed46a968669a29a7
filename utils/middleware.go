package utils

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GuestIDFromTokenMiddleware stores the authenticated guest's id in the
// request context. It runs behind the verifier, so the claims are always
// present here.
func GuestIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// OptionalGuestMiddleware authenticates the guest when a bearer token is
// present and lets the request through anonymously when it is not. The
// campground page is browsable without an account; it just shows no
// personal reservations then.
func OptionalGuestMiddleware(verifier *jwt.Verifier) iris.Handler {
	return func(ctx iris.Context) {
		header := ctx.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if verified, err := verifier.VerifyToken([]byte(token)); err == nil {
				var claims AccessToken
				if err := verified.Claims(&claims); err == nil {
					ctx.Values().Set("userID", claims.ID)
				}
			}
		}
		ctx.Next()
	}
}

// GuestID reads the id set by the middlewares above; ok is false for
// anonymous requests.
func GuestID(ctx iris.Context) (uint, bool) {
	id, ok := ctx.Values().Get("userID").(uint)
	return id, ok
}
