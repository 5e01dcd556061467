package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *logrus.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// TriggerSync 手动触发 MySideline 同步
// POST /sync/mysideline?force=true
// force=true 跳过节流；请求断开不会中断已开始的同步
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	ctx := context.WithoutCancel(c.Request.Context())

	res := h.syncService.SyncMySidelineEvents(ctx, service.SyncOptions{Force: force})
	switch {
	case res.Success:
		c.JSON(http.StatusOK, res)
	case res.Error == service.ErrSyncDisabled.Error():
		c.JSON(http.StatusConflict, res)
	default:
		h.logger.WithField("run_id", res.RunID).Errorf("手动同步失败: %s", res.Error)
		c.JSON(http.StatusInternalServerError, res)
	}
}

// DeactivatePast 停用已过期嘉年华
// POST /sync/mysideline/deactivate-past
func (h *SyncHandler) DeactivatePast(c *gin.Context) {
	n, err := h.syncService.DeactivatePastCarnivals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": n})
}

// Status 同步开关、是否到期、上次成功记录
// GET /sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	last, err := h.syncService.SyncLog().GetLastSuccessfulSync(ctx, model.SyncTypeMySideline)
	if err != nil {
		h.logger.WithError(err).Error("查询上次成功同步失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":        h.syncService.Enabled(),
		"shouldRun":      h.syncService.ShouldRunInitialSync(ctx),
		"lastSuccessful": last,
	})
}

// ListLogs 最近的同步记录
// GET /sync/logs?type=mysideline_events&limit=20
func (h *SyncHandler) ListLogs(c *gin.Context) {
	syncType := c.DefaultQuery("type", model.SyncTypeMySideline)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := h.syncService.SyncLog().ListRecent(c.Request.Context(), syncType, limit)
	if err != nil {
		h.logger.WithError(err).Error("ListLogs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrCarnivalNotFound)
}
