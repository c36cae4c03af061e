package record

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
)

// Field names of the JSON document. They match the gRPC GetVersion payload.
const (
	fieldKey       = "key"
	fieldVersion   = "version"
	fieldUpdatedAt = "updated_at"
)

// FileRepository persists the Version Record to a JSON file on disk.
// JSON is produced via protojson from a structpb.Struct, and every write
// replaces the file atomically through go-update with a checksum check.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu serialises read-modify-write cycles within the process.
	mu sync.Mutex
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// errMalformedRecord is returned when the JSON document lacks the version field.
var errMalformedRecord = errors.New("malformed version record")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
		now:  time.Now,
	}
}

// Current reads the record from disk.
func (r *FileRepository) Current(_ context.Context) (*release.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// SetCurrent fetches-or-creates the record, sets the version and writes it back.
func (r *FileRepository) SetCurrent(_ context.Context, version string) (*release.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.load()

	switch {
	case errors.Is(err, ErrNotFound):
		rec = new(release.Record)
	case err != nil:
		return nil, err
	}

	rec.Version = version
	rec.UpdatedAt = r.now().UTC()

	if err = r.save(rec); err != nil {
		return nil, err
	}

	return rec.Clone(), nil
}

// Close is a no-op; the file is opened per operation.
func (r *FileRepository) Close() error {
	return nil
}

// load decodes the file. The caller must hold mu.
func (r *FileRepository) load() (*release.Record, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, release.NewStoreError(classifyFileError(err), "read version file", err)
	}

	// An empty file is left behind by an interrupted first write.
	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, ErrNotFound
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, release.NewStoreError(release.ErrPersistence, "decode version file", err)
	}

	return fromStruct(&doc)
}

// save encodes the record and swaps it into place. The caller must hold mu.
func (r *FileRepository) save(rec *release.Record) error {
	doc, err := toStruct(rec)
	if err != nil {
		return release.NewStoreError(release.ErrPersistence, "encode version record", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		Indent:          "  ",
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(doc)
	if err != nil {
		return release.NewStoreError(release.ErrPersistence, "encode version record", err)
	}

	// go-update swaps files by renaming, so the target has to exist.
	if _, err = os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(r.path, nil, config.DefaultFilePermissions); err != nil {
			return release.NewStoreError(classifyFileError(err), "create version file", err)
		}
	}

	checksum := sha512.Sum512(data)

	options := goupdate.Options{
		TargetPath: r.path,
		TargetMode: config.DefaultFilePermissions,
		Checksum:   checksum[:],
		Hash:       crypto.SHA512,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return release.NewStoreError(classifyFileError(err), "write version file", err)
	}

	return nil
}

// classifyFileError maps filesystem failures to store error kinds.
func classifyFileError(err error) error {
	switch {
	case errors.Is(err, os.ErrPermission), errors.Is(err, os.ErrExist):
		return release.ErrConstraint
	default:
		return release.ErrPersistence
	}
}

// toStruct converts the domain record into its JSON document.
func toStruct(rec *release.Record) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldKey:       release.SettingKey,
		fieldVersion:   rec.Version,
		fieldUpdatedAt: rec.UpdatedAt.Format(time.RFC3339Nano),
	})
}

// fromStruct converts the JSON document into the domain record.
func fromStruct(doc *structpb.Struct) (*release.Record, error) {
	fields := doc.GetFields()

	versionValue, ok := fields[fieldVersion]
	if !ok {
		return nil, release.NewStoreError(release.ErrPersistence, "decode version file", errMalformedRecord)
	}

	rec := &release.Record{
		Version: versionValue.GetStringValue(),
	}

	if raw := fields[fieldUpdatedAt].GetStringValue(); raw != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, release.NewStoreError(release.ErrPersistence, "decode version file", fmt.Errorf("updated_at: %w", err))
		}

		rec.UpdatedAt = updatedAt
	}

	return rec, nil
}
