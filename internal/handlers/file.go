package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/logging"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
	"github.com/kameliyaaivanova/BlogAPI/internal/stats"
)

type FileHandler struct {
	DB *gorm.DB
}

// GetFile streams a stored blob.
func (h *FileHandler) GetFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid uuid")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, http.StatusNotFound, "File does not exist")
		}
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.Blob(http.StatusOK, echo.MIMEOctetStream, file.Content)
}

type fileResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// UploadFile stores a multipart blob and returns its address.
func (h *FileHandler) UploadFile(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid file")
	}
	if header.Size == 0 {
		return errorResponse(c, http.StatusBadRequest, "Invalid file")
	}

	src, err := header.Open()
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	file := models.File{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := h.DB.Create(&file).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, fileResponse{
		ID:  file.ID,
		URL: fmt.Sprintf("/files/%s", file.ID),
	})
}

// CleanupUnusedFiles deletes blobs no post logo references anymore and
// returns how many were removed.
func CleanupUnusedFiles(db *gorm.DB) (int64, error) {
	var files []models.File
	if err := db.Select("id").Find(&files).Error; err != nil {
		return 0, err
	}

	var amount int64
	for _, file := range files {
		var count int64
		pattern := "%" + file.ID.String() + "%"
		if err := db.Model(&models.Post{}).Where("logo LIKE ?", pattern).Count(&count).Error; err != nil {
			return amount, err
		}
		if count == 0 {
			if err := db.Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
				return amount, err
			}
			amount++
		}
	}
	return amount, nil
}

// StartFileJanitor runs CleanupUnusedFiles on a fixed interval until the
// context is cancelled. Each sweep's deletion count is reported to the
// statistics service when a client is configured.
func StartFileJanitor(ctx context.Context, db *gorm.DB, statsClient *stats.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				amount, err := CleanupUnusedFiles(db)
				if err != nil {
					logging.FromContext(ctx).Warn("file cleanup failed", "error", err)
					continue
				}
				if statsClient == nil {
					continue
				}
				if err := statsClient.ReportDeletedFiles(ctx, amount); err != nil {
					logging.FromContext(ctx).Warn("deleted-files report failed", "error", err)
				}
			}
		}
	}()
}
