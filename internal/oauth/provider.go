package oauth

import (
	"context"
	"errors"

	"github.com/Saatvik786/TaskSphere/internal/auth"
)

// ErrExchange is returned when the authorization code cannot be redeemed or the
// returned id_token does not verify.
var ErrExchange = errors.New("oauth exchange failed")

// Provider turns an authorization code into a verified identity. It makes no account
// decisions; those belong to auth.Service.
type Provider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.ExternalIdentity, error)
}
