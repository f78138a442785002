package connectivity

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProber asks the server's grpc.health.v1 service whether it is
// SERVING. The connection is created on first use and reused.
type HealthProber struct {
	address string
	service string

	mu   sync.Mutex
	conn *grpc.ClientConn
}

func NewHealthProber(address, service string) *HealthProber {
	return &HealthProber{address: address, service: service}
}

func (p *HealthProber) client() (healthpb.HealthClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, err := grpc.NewClient(p.address, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
		}
		p.conn = conn
	}
	return healthpb.NewHealthClient(p.conn), nil
}

func (p *HealthProber) Probe(ctx context.Context) error {
	c, err := p.client()
	if err != nil {
		return err
	}

	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: p.service})
	if err != nil {
		return fmt.Errorf("%w: health check: %v", common.ErrTransport, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: server status %s", common.ErrTransport, resp.GetStatus())
	}
	return nil
}

func (p *HealthProber) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
