package engine

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/client/transport"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

type transportRemote struct {
	*transport.Client
}

// NewRemote exposes a transport client as a Remote.
func NewRemote(c *transport.Client) Remote {
	return transportRemote{c}
}

func (r transportRemote) Subscribe(ctx context.Context, token string, handler func(models.Event)) (PushChannel, error) {
	pc, err := r.Client.Subscribe(ctx, token, handler)
	if err != nil {
		return nil, err
	}
	return pc, nil
}
