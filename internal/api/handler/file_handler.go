package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// FileHandler exposes the sandboxed file manager.
type FileHandler struct {
	files ports.FileService
}

func NewFileHandler(files ports.FileService) *FileHandler {
	return &FileHandler{files: files}
}

type listFilesResponse struct {
	Path  string            `json:"path"`
	Files []ports.FileEntry `json:"files"`
}

// List handles GET /api/files?path=.
//
// @Summary      List a directory
// @Tags         files
// @Produce      json
// @Param        path  query     string  false  "Directory relative to the browse root"
// @Success      200   {object}  listFilesResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/files [get]
func (h *FileHandler) List(c echo.Context) error {
	rel := c.QueryParam("path")
	entries, err := h.files.List(c.Request().Context(), rel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listFilesResponse{Path: rel, Files: entries})
}

// Read handles GET /api/files/read?path= and returns the raw file body.
//
// @Summary      Read a file
// @Tags         files
// @Produce      plain
// @Param        path  query     string  true  "File relative to the browse root"
// @Success      200   {string}  string
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/files/read [get]
func (h *FileHandler) Read(c echo.Context) error {
	data, err := h.files.Read(c.Request().Context(), c.QueryParam("path"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, data)
}

type writeFileRequest struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content"`
}

// Write handles POST /api/files/write.
//
// @Summary      Write a file
// @Tags         files
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/files/write [post]
func (h *FileHandler) Write(c echo.Context) error {
	var req writeFileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.files.Write(c.Request().Context(), req.Path, []byte(req.Content)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type createEntryRequest struct {
	Path string `json:"path"`
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=file folder"`
}

// Create handles POST /api/files/create.
//
// @Summary      Create a file or folder
// @Tags         files
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/files/create [post]
func (h *FileHandler) Create(c echo.Context) error {
	var req createEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.files.Create(c.Request().Context(), req.Path, req.Name, req.Type)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "path": created, "type": req.Type})
}

type deleteEntryRequest struct {
	Path string `json:"path" validate:"required"`
}

// Delete handles POST /api/files/delete. A missing target reports 400,
// not 404, which clients depend on.
//
// @Summary      Delete a file or folder
// @Tags         files
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/files/delete [post]
func (h *FileHandler) Delete(c echo.Context) error {
	var req deleteEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.files.Delete(c.Request().Context(), req.Path); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type renameEntryRequest struct {
	OldPath string `json:"oldPath" validate:"required"`
	NewPath string `json:"newPath" validate:"required"`
}

// Rename handles POST /api/files/rename.
//
// @Summary      Rename or move an entry
// @Tags         files
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/files/rename [post]
func (h *FileHandler) Rename(c echo.Context) error {
	var req renameEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.files.Rename(c.Request().Context(), req.OldPath, req.NewPath); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Upload handles POST /api/files/upload (multipart: file + path).
//
// @Summary      Upload a file
// @Tags         files
// @Accept       mpfd
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/files/upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	if err := h.files.Upload(c.Request().Context(), c.FormValue("path"), fh.Filename, src); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Download handles GET /api/files/download?path= as an attachment.
//
// @Summary      Download a file
// @Tags         files
// @Produce      octet-stream
// @Param        path  query     string  true  "File relative to the browse root"
// @Success      200   {file}    file
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/files/download [get]
func (h *FileHandler) Download(c echo.Context) error {
	rc, entry, err := h.files.Download(c.Request().Context(), c.QueryParam("path"))
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+entry.Name+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, rc)
}
