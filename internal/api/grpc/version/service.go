package version

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "sweetmoney.version.v1.VersionService"
	// GetVersionFullMethod is the full method name of GetVersion.
	GetVersionFullMethod = "/" + ServiceName + "/GetVersion"
)

// VersionServiceServer is the server API of the version service.
type VersionServiceServer interface {
	// GetVersion returns the Version Record.
	GetVersion(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// VersionServiceClient is the client API of the version service.
type VersionServiceClient interface {
	// GetVersion returns the Version Record.
	GetVersion(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// ServiceDesc describes the version service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VersionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetVersion",
			Handler:    getVersionHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sweetmoney/version/v1/version.proto",
}

// RegisterVersionServiceServer registers srv on the provided registrar.
func RegisterVersionServiceServer(registrar grpc.ServiceRegistrar, srv VersionServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// versionServiceClient invokes the version service over a connection.
type versionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVersionServiceClient creates a client for the version service.
//
//nolint:ireturn // Mirrors the shape of generated gRPC clients.
func NewVersionServiceClient(cc grpc.ClientConnInterface) VersionServiceClient {
	return &versionServiceClient{cc: cc}
}

// GetVersion calls the remote GetVersion method.
func (c *versionServiceClient) GetVersion(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetVersionFullMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// getVersionHandler decodes the request and dispatches it through the interceptor chain.
func getVersionHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(VersionServiceServer)

	if interceptor == nil {
		return server.GetVersion(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetVersionFullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		request, _ := req.(*emptypb.Empty)

		return server.GetVersion(ctx, request)
	}

	return interceptor(ctx, in, info, handler)
}
