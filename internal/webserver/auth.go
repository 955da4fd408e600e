package webserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// Claims identify the caller. ShopID is set for shop owners and names the
// shop their notifications are scoped to.
type Claims struct {
	UserID int64 `json:"uid"`
	ShopID int64 `json:"shop_id,omitempty"`
	jwt.RegisteredClaims
}

func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: userContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is missing or invalid").SetInternal(err)
		},
	})
}

// IssueToken signs an HS256 token for uid. A zero ttl issues a token
// without expiry.
func IssueToken(secret string, uid, shopID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: uid,
		ShopID: shopID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   "shopstock",
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// CurrentUser returns the claims of the authenticated caller.
func CurrentUser(c echo.Context) (*Claims, error) {
	token, ok := c.Get(userContextKey).(*jwt.Token)
	if !ok {
		return nil, errors.New("request is not authenticated")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("token carries no user")
	}
	return claims, nil
}
