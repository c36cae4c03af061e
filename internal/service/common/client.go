//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/sweetmoney-versioning/internal/api/grpc/version"
	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/version"
)

// Client wraps the gRPC VersionService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the version server.
	conn *grpc.ClientConn
	// api is the VersionService client.
	api api.VersionServiceClient
	// health is the standard health client of the same server.
	health grpc_health_v1.HealthClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the version server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial version server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewVersionServiceClient(conn),
		health:      grpc_health_v1.NewHealthClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetVersion retrieves the Version Record from the server.
func (c *Client) GetVersion(ctx context.Context) (*release.Record, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetVersion(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}

	return api.FromStruct(response)
}

// Healthy reports whether the server answers SERVING for the version service.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.health.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return false, fmt.Errorf("health check: %w", err)
	}

	return response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
