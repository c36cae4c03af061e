package version

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
)

// fakeService returns a fixed record or error.
type fakeService struct {
	rec *release.Record
	err error
}

// Current returns the configured record or error.
func (f *fakeService) Current(context.Context) (*release.Record, error) {
	return f.rec, f.err
}

// TestServer_GetVersion_Codes maps repository errors to status codes.
func TestServer_GetVersion_Codes(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		code codes.Code
	}{
		"not found":   {err: record.ErrNotFound, code: codes.NotFound},
		"unavailable": {err: release.NewStoreError(release.ErrConnection, "current", errors.New("refused")), code: codes.Unavailable},
		"internal":    {err: errors.New("boom"), code: codes.Internal},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := NewServer(&fakeService{err: tc.err})

			_, err := s.GetVersion(context.Background(), new(emptypb.Empty))
			require.Equal(t, tc.code, status.Code(err))
		})
	}
}

// TestStructRoundTrip converts a record to the wire message and back.
func TestStructRoundTrip(t *testing.T) {
	t.Parallel()

	updatedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	msg, err := ToStruct(&release.Record{Version: "1.5.2-beta", UpdatedAt: updatedAt})
	require.NoError(t, err)
	require.NotEmpty(t, msg.GetFields()[FieldServerVersion].GetStringValue())

	rec, err := FromStruct(msg)
	require.NoError(t, err)
	require.Equal(t, "1.5.2-beta", rec.Version)
	require.True(t, updatedAt.Equal(rec.UpdatedAt))

	_, err = FromStruct(&structpb.Struct{})
	require.ErrorIs(t, err, errMalformedResponse)
}

// TestServiceDesc_OverBufconn calls GetVersion through a real gRPC server and client.
func TestServiceDesc_OverBufconn(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterVersionServiceServer(server, NewServer(&fakeService{
		rec: &release.Record{Version: "1.5.1"},
	}))

	go func() {
		_ = server.Serve(listener)
	}()

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	msg, err := NewVersionServiceClient(conn).GetVersion(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	rec, err := FromStruct(msg)
	require.NoError(t, err)
	require.Equal(t, "1.5.1", rec.Version)
	require.True(t, rec.UpdatedAt.IsZero())
}
