//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/oshokin/sweetmoney-versioning/internal/config"
	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/version"
)

// versionPath is the HTTP route serving the Version Record.
const versionPath = "/api/version"

var (
	errBadHTTPStatus   = errors.New("unexpected http status")
	errMalformedJSON   = errors.New("malformed version document")
	errVersionNotFound = errors.New("no version recorded on the server")
)

// HTTPClient reads the Version Record from the HTTP API.
type HTTPClient struct {
	// baseURL is the server root, e.g. http://127.0.0.1:8061.
	baseURL *url.URL
	// client performs the requests.
	client *http.Client
}

// NewHTTPClient creates a client for the server at address.
// A bare host:port is treated as http://host:port.
func NewHTTPClient(address string, timeout time.Duration) (*HTTPClient, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	baseURL, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}

	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// GetVersion fetches and decodes the Version Record.
func (c *HTTPClient) GetVersion(ctx context.Context) (*release.Record, error) {
	target := *c.baseURL
	target.Path = path.Join(target.Path, versionPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read version response: %w", err)
	}

	switch response.StatusCode {
	case http.StatusOK:
		return ParseVersionDocument(body)
	case http.StatusNotFound:
		return nil, errVersionNotFound
	default:
		return nil, fmt.Errorf("%s: %s: %w", target.String(), response.Status, errBadHTTPStatus)
	}
}

// ParseVersionDocument extracts the record from a JSON version document.
func ParseVersionDocument(body []byte) (*release.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, errMalformedJSON
	}

	versionValue := gjson.GetBytes(body, "version")
	if versionValue.Type != gjson.String || versionValue.String() == "" {
		return nil, errMalformedJSON
	}

	rec := &release.Record{
		Version: versionValue.String(),
	}

	if updatedAt := gjson.GetBytes(body, "updated_at"); updatedAt.Exists() {
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedJSON, err)
		}

		rec.UpdatedAt = parsed
	}

	return rec, nil
}
