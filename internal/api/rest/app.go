package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
	"github.com/oshokin/sweetmoney-versioning/internal/logger"
	"github.com/oshokin/sweetmoney-versioning/internal/repository/record"
	"github.com/oshokin/sweetmoney-versioning/internal/service/checker"
	"github.com/oshokin/sweetmoney-versioning/internal/version"
)

// Timeouts of the HTTP server.
const (
	readTimeout  = 5 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 120 * time.Second
)

// VersionReader reads the Version Record.
type VersionReader interface {
	Current(ctx context.Context) (*release.Record, error)
}

// FormatChecker compares number formats for a language.
type FormatChecker interface {
	Check(ctx context.Context, language string) (*checker.Check, error)
	CheckAll(ctx context.Context, languages []string) ([]*checker.Check, error)
}

// errorResponse is the JSON body of failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// versionResponse is the JSON body of /api/version.
type versionResponse struct {
	Version       string `json:"version"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	ServerVersion string `json:"server_version"`
}

// checkResponse is one entry of the /api/formats bodies.
type checkResponse struct {
	*checker.Check

	IsMatch bool   `json:"match"`
	Verdict string `json:"verdict"`
}

// handlers binds the routes to their collaborators.
type handlers struct {
	versions  VersionReader
	formats   FormatChecker
	languages []string
}

// NewApp builds the fiber application. ctx carries the logger used for access logs and errors.
func NewApp(ctx context.Context, versions VersionReader, formats FormatChecker, languages []string) *fiber.App {
	ctx = logger.WithName(ctx, "http")

	app := fiber.New(fiber.Config{
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           idleTimeout,
		ServerHeader:          version.UserAgent(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(ctx),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Output: zap.NewStdLog(logger.FromContext(ctx).Desugar()).Writer(),
	}))

	h := &handlers{
		versions:  versions,
		formats:   formats,
		languages: languages,
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.SendString(version.Short())
	})

	api := app.Group("/api")
	api.Get("/version", h.getVersion)
	api.Get("/formats", h.getFormats)
	api.Get("/formats/:language", h.getFormat)

	return app
}

// getVersion serves the Version Record.
func (h *handlers) getVersion(c *fiber.Ctx) error {
	rec, err := h.versions.Current(c.UserContext())

	switch {
	case err == nil:
	case errors.Is(err, record.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no version recorded")
	case errors.Is(err, release.ErrConnection):
		return fiber.NewError(fiber.StatusServiceUnavailable, "version store unavailable")
	default:
		return err
	}

	response := versionResponse{
		Version:       rec.Version,
		ServerVersion: version.Short(),
	}

	if !rec.UpdatedAt.IsZero() {
		response.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return c.JSON(response)
}

// getFormats serves the check of every configured language.
func (h *handlers) getFormats(c *fiber.Ctx) error {
	checks, err := h.formats.CheckAll(c.UserContext(), h.languages)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	response := make([]checkResponse, 0, len(checks))
	for _, check := range checks {
		response = append(response, toCheckResponse(check))
	}

	return c.JSON(response)
}

// getFormat serves the check of one language.
func (h *handlers) getFormat(c *fiber.Ctx) error {
	// Route params alias the request buffer, which fasthttp reuses for the next request.
	language := utils.CopyString(c.Params("language"))

	check, err := h.formats.Check(c.UserContext(), language)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(toCheckResponse(check))
}

// toCheckResponse adds the derived verdict to a check.
func toCheckResponse(check *checker.Check) checkResponse {
	return checkResponse{
		Check:   check,
		IsMatch: check.Match(),
		Verdict: check.Verdict(),
	}
}

// errorHandler renders errors as JSON and logs them by severity.
func errorHandler(ctx context.Context) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		message := err.Error()

		switch {
		case code == fiber.StatusServiceUnavailable:
			logger.WarnKV(ctx, "Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		case code >= fiber.StatusInternalServerError:
			logger.ErrorKV(ctx, "Request failed", "method", c.Method(), "path", c.Path(), "error", err)

			if fiberErr == nil {
				message = "internal error"
			}
		default:
			logger.DebugKV(ctx, "Request rejected", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(code).JSON(errorResponse{Error: message})
	}
}
