package version

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	buildinfo "github.com/oshokin/sweetmoney-versioning/internal/version"
)

// Response field names.
const (
	FieldVersion       = "version"
	FieldUpdatedAt     = "updated_at"
	FieldServerVersion = "server_version"
)

// errMalformedResponse is returned when a response lacks the version field.
var errMalformedResponse = errors.New("malformed version response")

// Service abstracts the reads the transport layer depends on.
type Service interface {
	Current(ctx context.Context) (*release.Record, error)
}

// Server implements the VersionService gRPC API.
type Server struct {
	// service reads the Version Record.
	service Service
}

// NewServer wires the provided service into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetVersion returns the current Version Record.
func (s *Server) GetVersion(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	rec, err := s.service.Current(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	response, err := ToStruct(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode version")
	}

	return response, nil
}

// ToStruct converts a record into the response message.
func ToStruct(rec *release.Record) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldVersion:       rec.Version,
		FieldServerVersion: buildinfo.Short(),
	}

	if !rec.UpdatedAt.IsZero() {
		fields[FieldUpdatedAt] = rec.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return structpb.NewStruct(fields)
}

// FromStruct converts a response message back into a record.
func FromStruct(msg *structpb.Struct) (*release.Record, error) {
	fields := msg.GetFields()

	versionValue, ok := fields[FieldVersion]
	if !ok || versionValue.GetStringValue() == "" {
		return nil, errMalformedResponse
	}

	rec := &release.Record{
		Version: versionValue.GetStringValue(),
	}

	if updatedAt, found := fields[FieldUpdatedAt]; found {
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedResponse, err)
		}

		rec.UpdatedAt = parsed
	}

	return rec, nil
}

// toStatus maps repository errors to gRPC status codes.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, record.ErrNotFound):
		return status.Error(codes.NotFound, "no version recorded")
	case errors.Is(err, release.ErrConnection):
		logger.WarnKV(ctx, "Version store unavailable", "error", err)

		return status.Error(codes.Unavailable, "version store unavailable")
	default:
		logger.ErrorKV(ctx, "Unable to read version", "error", err)

		return status.Error(codes.Internal, "unable to read version")
	}
}
