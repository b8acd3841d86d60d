// Package configmanagement exposes the reference-sample CRUD endpoints.
// Audio uploads go to object storage; the metadata row keeps the object
// key.
package configmanagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"asr-benchmark-platform/internal/datastore"
	"asr-benchmark-platform/internal/objectstore"
)

const maxUploadSize = 50 << 20 // 50 MB

// Handlers bundles the reference-sample endpoints with their dependencies.
type Handlers struct {
	Store   *datastore.Store
	Objects *objectstore.Client
}

// CreateReferenceSampleHandler creates a new reference sample from a
// multipart/form-data request carrying an audio file plus metadata.
func (h *Handlers) CreateReferenceSampleHandler(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse multipart form: %v. Max size: %d MB", err, maxUploadSize>>20)})
		return
	}

	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		if err == http.ErrMissingFile {
			c.JSON(http.StatusBadRequest, gin.H{"error": "audio_file is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get audio_file: %v", err)})
		}
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Audio file size exceeds limit of %d MB", maxUploadSize>>20)})
		return
	}

	name := c.PostForm("name")
	transcript := c.PostForm("transcript")
	if name == "" || transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and transcript fields are required"})
		return
	}

	sample := datastore.ReferenceSample{
		Name:       name,
		Transcript: transcript,
	}
	if langCode := c.PostForm("language_code"); langCode != "" {
		sample.LanguageCode = sql.NullString{String: langCode, Valid: true}
	}
	if desc := c.PostForm("description"); desc != "" {
		sample.Description = sql.NullString{String: desc, Valid: true}
	}

	// key_terms and tags arrive as JSON array strings, e.g. ["fox","dog"].
	if keyTerms := c.PostForm("key_terms"); keyTerms != "" {
		if !json.Valid([]byte(keyTerms)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key_terms field contains invalid JSON"})
			return
		}
		sample.KeyTerms = json.RawMessage(keyTerms)
	}
	if tags := c.PostForm("tags"); tags != "" {
		if !json.Valid([]byte(tags)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tags field contains invalid JSON"})
			return
		}
		sample.Tags = json.RawMessage(tags)
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	objectKey, err := h.Objects.Upload(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("failed to upload audio to object storage: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload audio file: %v", err)})
		return
	}
	sample.AudioObjectKey = objectKey

	id, err := h.Store.CreateReferenceSample(&sample)
	if err != nil {
		// Remove the uploaded object so a failed insert does not orphan it.
		go func() {
			if delErr := h.Objects.Delete(context.Background(), objectKey); delErr != nil {
				log.Printf("failed to delete orphaned object '%s' after DB error: %v", objectKey, delErr)
			}
		}()
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create reference sample: %v", err)})
		return
	}

	created, err := h.Store.GetReferenceSample(id)
	if err != nil {
		log.Printf("failed to refetch reference sample %d after creation: %v", id, err)
		c.JSON(http.StatusCreated, sample)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetReferenceSampleHandler retrieves one reference sample by ID.
func (h *Handlers) GetReferenceSampleHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference sample ID format"})
		return
	}

	sample, err := h.Store.GetReferenceSample(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to retrieve reference sample: %v", err)})
		}
		return
	}
	c.JSON(http.StatusOK, sample)
}

// DownloadAudioHandler streams a reference sample's audio file from object
// storage.
func (h *Handlers) DownloadAudioHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference sample ID format"})
		return
	}

	sample, err := h.Store.GetReferenceSample(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to retrieve reference sample: %v", err)})
		}
		return
	}

	reader, size, err := h.Objects.Reader(c.Request.Context(), sample.AudioObjectKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch audio for reference sample %d: %v", id, err)})
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(sample.AudioObjectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filepath.Base(sample.AudioObjectKey)),
	})
}

// ListReferenceSamplesHandler lists reference samples with optional
// language_code and tags filters.
func (h *Handlers) ListReferenceSamplesHandler(c *gin.Context) {
	samples, err := h.Store.ListReferenceSamples(c.Query("language_code"), c.Query("tags"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list reference samples: %v", err)})
		return
	}
	if samples == nil {
		samples = []*datastore.ReferenceSample{}
	}
	c.JSON(http.StatusOK, samples)
}

// UpdateReferenceSampleHandler updates metadata of an existing sample. The
// audio object key is immutable through this endpoint.
func (h *Handlers) UpdateReferenceSampleHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference sample ID format"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request payload: %v", err)})
		return
	}
	if _, ok := updateData["audio_object_key"]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio_object_key cannot be updated via this endpoint"})
		return
	}
	delete(updateData, "id")
	delete(updateData, "created_at")
	delete(updateData, "updated_at")

	updated, err := h.Store.UpdateReferenceSample(id, updateData)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "no updatable metadata"):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to update reference sample: %v", err)})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteReferenceSampleHandler removes a sample and its stored audio.
func (h *Handlers) DeleteReferenceSampleHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference sample ID format"})
		return
	}

	sample, err := h.Store.GetReferenceSample(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("reference sample with ID %d not found", id)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to retrieve reference sample before deletion: %v", err)})
		}
		return
	}

	if err := h.Store.DeleteReferenceSample(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to delete reference sample: %v", err)})
		return
	}

	if sample.AudioObjectKey != "" {
		if err := h.Objects.Delete(c.Request.Context(), sample.AudioObjectKey); err != nil {
			log.Printf("failed to delete audio object '%s' for reference sample %d: %v", sample.AudioObjectKey, id, err)
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Reference sample deleted, but removing audio object '%s' failed: %v", sample.AudioObjectKey, err)})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reference sample and associated audio deleted successfully"})
}
