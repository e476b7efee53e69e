// Package api exposes the import pipeline over HTTP.
//
// The surface is deliberately small: upload or post a statement to parse it,
// post the parse result back with conflict decisions to resolve it, and
// inspect the backup snapshot. Persistence of the resolved import stays with
// the caller.
package api

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/internal/extractor"
	"loyalty-statement-import/internal/models"
	"loyalty-statement-import/internal/pipeline"
	"loyalty-statement-import/pkg/errors"
	"loyalty-statement-import/pkg/logger"
)

const version = "1.0.0"

// ParseRequest is the JSON body of POST /api/parse when no file is uploaded.
type ParseRequest struct {
	Text            string                `json:"text"`
	Currency        string                `json:"currency,omitempty"`
	Legacy          bool                  `json:"legacy,omitempty"`
	ExistingFlights []*models.Flight      `json:"existingFlights,omitempty"`
	ExistingMiles   []*models.MilesRecord `json:"existingMiles,omitempty"`
}

// ResolveRequest is the JSON body of POST /api/resolve.
type ResolveRequest struct {
	Parsed      *pipeline.ImportResult       `json:"parsed"`
	Resolutions map[string]models.Resolution `json:"resolutions"`
}

// ErrorResponse is the JSON shape of every non-2xx response.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Category   string `json:"category,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Handler holds the HTTP handlers for the import API.
type Handler struct {
	Log     logger.Logger
	Backups *backup.Store
}

// New creates a handler. The backup store may be nil, in which case the
// backup endpoint reports 404.
func New(log logger.Logger, backups *backup.Store) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Log: log.WithComponent("api"), Backups: backups}
}

// Register sets up the routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse", h.HandleParse)
	app.Post("/api/resolve", h.HandleResolve)
	app.Get("/api/backup", h.HandleBackupInfo)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// HandleParse runs phase 1 over an uploaded PDF or posted statement text and
// returns the parse result. Parsing never persists anything, so the endpoint
// is safe to call repeatedly.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	var (
		req       ParseRequest
		pageCount int
		source    string
	)

	if file, err := c.FormFile("file"); err == nil {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest,
				errors.InputError(errors.CodeUnreadableText, "only PDF uploads are supported"))
		}

		text, pages, err := h.extractUpload(c, file.Filename)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, err)
		}
		req.Text = text
		req.Currency = c.FormValue("currency")
		req.Legacy = c.FormValue("legacy") == "true"
		pageCount = pages
		source = file.Filename
	} else if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest,
			errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText, "invalid request body"))
	}

	opts := &pipeline.Options{
		ExistingFlights: req.ExistingFlights,
		ExistingMiles:   req.ExistingMiles,
		UserCurrency:    req.Currency,
		PageCount:       pageCount,
		Source:          source,
	}

	if req.Legacy {
		legacy := pipeline.ParseStatementLegacy(req.Text, opts)
		return c.Status(parseStatus(legacy.Success)).JSON(legacy)
	}

	result := pipeline.ParseStatement(req.Text, opts)
	h.Log.WithFields(logger.Fields{
		"source":    source,
		"flights":   len(result.Flights),
		"conflicts": len(result.Conflicts),
		"success":   result.Success,
	}).Info("statement parsed")

	return c.Status(parseStatus(result.Success)).JSON(result)
}

// HandleResolve runs phase 2: the caller posts back the parse result along
// with a decision for every conflict.
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest,
			errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText, "invalid request body"))
	}
	if req.Parsed == nil {
		return writeError(c, fiber.StatusBadRequest,
			errors.New(errors.CategoryResolve, errors.CodeUnexpectedError, "missing parsed result"))
	}

	resolved, err := pipeline.Resolve(req.Parsed, req.Resolutions, h.Log)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err)
	}

	h.Log.WithFields(logger.Fields{
		"flights": len(resolved.FlightsToAdd),
		"months":  len(resolved.MilesToMerge),
	}).Info("import resolved")

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resolved,
	})
}

// HandleBackupInfo reports whether a pre-import snapshot exists and how old
// it is.
func (h *Handler) HandleBackupInfo(c *fiber.Ctx) error {
	if h.Backups == nil {
		return writeError(c, fiber.StatusNotFound,
			errors.BackupError(errors.CodeBackupMissing, "info", nil))
	}

	has, err := h.Backups.Has(c.Context())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err)
	}
	if !has {
		return c.JSON(fiber.Map{"exists": false})
	}

	age, err := h.Backups.Age(c.Context())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"exists":     true,
		"ageSeconds": int64(age.Seconds()),
	})
}

// extractUpload copies the uploaded file to a temp path and extracts its
// text. The pdf library only reads from the filesystem.
func (h *Handler) extractUpload(c *fiber.Ctx, filename string) (string, int, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", 0, errors.InputError(errors.CodeEmptyInput, "no file uploaded")
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, errors.Wrap(err, errors.CategoryInput, errors.CodeUnreadableText, "failed to open upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", 0, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", 0, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError, "failed to save upload")
	}
	tmp.Close()

	h.Log.WithField("file", filename).Debug("extracting uploaded statement")
	return extractor.ExtractCombined(tmp.Name())
}

func parseStatus(success bool) int {
	if success {
		return fiber.StatusOK
	}
	return fiber.StatusUnprocessableEntity
}

func writeError(c *fiber.Ctx, status int, err error) error {
	resp := ErrorResponse{Error: err.Error()}
	if ie, ok := errors.AsImportError(err); ok {
		resp.Code = string(ie.Code)
		resp.Category = string(ie.Category)
		resp.Suggestion = ie.Suggestion
	}
	return c.Status(status).JSON(resp)
}
