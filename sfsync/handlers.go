package sfsync

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dealdesk/deals_backend/config"
	"github.com/dealdesk/deals_backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())

		resp := StatusResponse{}
		prefix := IDPrefix + "%"
		if err := db.Model(&models.Employee{}).Where("id LIKE ?", prefix).Count(&resp.Employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.MerchantAccount{}).Where("id LIKE ?", prefix).Count(&resp.Accounts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.Deal{}).Where("id LIKE ?", prefix).Count(&resp.Deals).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var last models.SyncRun
		if err := db.Order("id DESC").Take(&last).Error; err == nil {
			r := toRunResponse(last)
			resp.LastRun = &r
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var lastSuccess models.SyncRun
		if err := db.Where("status = ?", models.SyncRunStatusSuccess).
			Order("id DESC").Take(&lastSuccess).Error; err == nil {
			r := toRunResponse(lastSuccess)
			resp.LastSuccess = &r
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// TriggerSyncHandler queues a run and dispatches it through Pub/Sub; the push
// worker executes it.
func TriggerSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TriggerSyncRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var pending int64
		if err := db.Model(&models.SyncRun{}).
			Where("status IN ?", []string{models.SyncRunStatusQueued, models.SyncRunStatusRunning}).
			Count(&pending).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if pending > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "a sync is already queued or running"})
			return
		}

		run := models.SyncRun{
			Status:      models.SyncRunStatusQueued,
			TriggeredBy: models.SyncTriggeredManual,
			DryRun:      req.DryRun,
			FullSync:    req.FullSync,
		}
		if err := db.Create(&run).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := PublishSyncRun(c.Request.Context(), run.ID); err != nil {
			_ = db.Model(&run).Updates(map[string]interface{}{
				"status":  models.SyncRunStatusFailed,
				"message": "failed to dispatch: " + err.Error(),
			}).Error
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"runId": run.ID})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var runs []models.SyncRun
		if err := db.Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncHistoryResponse{Items: make([]SyncRunResponse, 0, len(runs))}
		for _, run := range runs {
			resp.Items = append(resp.Items, toRunResponse(run))
		}
		c.JSON(http.StatusOK, resp)
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var run models.SyncRun
		if err := db.Where("id = ?", id).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var syncErrors []models.SyncError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id").Find(&syncErrors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		detail := SyncRunDetailResponse{SyncRunResponse: toRunResponse(run)}
		if len(run.StatsJSON) > 0 {
			_ = json.Unmarshal(run.StatsJSON, &detail.Stats)
		}
		for _, e := range syncErrors {
			detail.Errors = append(detail.Errors, SyncErrorResponse{
				EntityType: e.EntityType,
				ExternalId: e.ExternalId,
				ErrorCode:  e.ErrorCode,
				Message:    e.Message,
			})
		}
		c.JSON(http.StatusOK, detail)
	}
}

func toRunResponse(run models.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:            run.ID,
		Status:        run.Status,
		TriggeredBy:   run.TriggeredBy,
		DryRun:        run.DryRun,
		FullSync:      run.FullSync,
		StartedAt:     formatTime(run.StartedAt),
		FinishedAt:    formatTime(run.FinishedAt),
		DurationMs:    run.DurationMs,
		RecordsSynced: run.RecordsSynced,
		WarningCount:  run.WarningCount,
		Message:       run.Message,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
