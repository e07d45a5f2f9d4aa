package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/01moynul/tenantdesk-golang/internal/ingest"
	"github.com/01moynul/tenantdesk-golang/internal/tenant"
	"github.com/gin-gonic/gin"
)

// importEntities maps the URL segment to an ingest entity.
var importEntities = map[string]string{
	"products":   ingest.EntityProduct,
	"variants":   ingest.EntityVariant,
	"orders":     ingest.EntityOrder,
	"line_items": ingest.EntityLineItem,
}

// ImportRecords bulk loads a JSON array of records into the caller's shop.
// Query: batch_size (entity default when absent), mode=batched|atomic.
// POST /v1/admin/import/:entity
func (h *Handlers) ImportRecords(c *gin.Context) {
	entity, opts, ok := h.importTarget(c)
	if !ok {
		return
	}
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportSize())
	records, err := ingest.DecodeRecords(body)
	if err != nil {
		decodeError(c, err)
		return
	}
	h.runImport(c, entity, records, opts)
}

func decodeError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Import body is too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// importTarget resolves the entity and options of an import request. It writes the error
// response itself and reports false when the request cannot proceed.
func (h *Handlers) importTarget(c *gin.Context) (string, ingest.Options, bool) {
	// 1. --- Resolve the target ---
	entity, ok := importEntities[c.Param("entity")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown entity: " + c.Param("entity")})
		return "", ingest.Options{}, false
	}
	p, err := tenant.FromContext(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return "", ingest.Options{}, false
	}

	// 2. --- Options ---
	opts := ingest.Options{Mode: h.IngestMode, ShopID: p.ShopID, DeriveSlugs: c.Query("derive_slugs") == "true"}
	if raw := c.Query("batch_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be a positive integer"})
			return "", ingest.Options{}, false
		}
		opts.BatchSize = size
	}
	if raw := c.Query("mode"); raw != "" {
		mode, err := ingest.ParseMode(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return "", ingest.Options{}, false
		}
		opts.Mode = mode
	}
	return entity, opts, true
}

func (h *Handlers) runImport(c *gin.Context, entity string, records []ingest.Record, opts ingest.Options) {
	summary, err := h.Ingest.Run(c.Request.Context(), entity, records, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.respondError(c, err)
			return
		}
		body := gin.H{"error": err.Error(), "summary": summary}
		var berr *ingest.BatchError
		if errors.As(err, &berr) {
			body["batch"] = berr.Batch
			body["index"] = berr.Index
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, summary)
}
