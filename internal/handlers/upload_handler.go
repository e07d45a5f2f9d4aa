package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImportFileSize = 32 << 20

// UploadImportFile handles POST /v1/admin/import/:entity/file
// It takes a data_*.json export as multipart field "file" and runs it like ImportRecords.
func (h *Handlers) UploadImportFile(c *gin.Context) {
	entity, opts, ok := h.importTarget(c)
	if !ok {
		return
	}

	// 1. Get the file from the request
	// The multipart envelope adds a little on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportSize()+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Import file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import file must be .json"})
		return
	}
	if file.Size > h.maxImportSize() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Import file is too large"})
		return
	}

	// 2. Decode it
	f, err := file.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	records, err := ingest.DecodeRecords(f)
	if err != nil {
		decodeError(c, err)
		return
	}
	h.Log.Info("Import file received", zap.String("entity", entity),
		zap.String("file", file.Filename), zap.Int("records", len(records)))

	// 3. Load it
	h.runImport(c, entity, records, opts)
}
