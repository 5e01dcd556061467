package api

import (
	"net/http"
	"strconv"

	"CarnivalSync/internal/repository"
	"CarnivalSync/internal/service"
	"CarnivalSync/internal/utils/normalize"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CarnivalHandler 嘉年华查询接口
type CarnivalHandler struct {
	carnivalService *service.CarnivalService
	logger          *logrus.Logger
}

func NewCarnivalHandler(carnivalService *service.CarnivalService, logger *logrus.Logger) *CarnivalHandler {
	return &CarnivalHandler{
		carnivalService: carnivalService,
		logger:          logger,
	}
}

// ListCarnivals 嘉年华列表
// GET /api/carnivals?state=QLD&active=true&from=2025-01-01&page=1&page_size=20
func (h *CarnivalHandler) ListCarnivals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var filter repository.CarnivalFilter
	if s := c.Query("state"); s != "" {
		filter.State = normalize.State(s)
		if filter.State == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state"})
			return
		}
	}
	if a := c.Query("active"); a != "" {
		active, err := strconv.ParseBool(a)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return
		}
		filter.Active = &active
	}
	if f := c.Query("from"); f != "" {
		from, ok := normalize.ParseDate(f)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		filter.FromDate = &from
	}

	result, err := h.carnivalService.ListCarnivals(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListCarnivals failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCarnival 嘉年华详情
// GET /api/carnivals/:id
func (h *CarnivalHandler) GetCarnival(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}
	detail, err := h.carnivalService.GetCarnival(c.Request.Context(), id)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("GetCarnival failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Last-Modified", detail.UpdatedAt.UTC().Format(http.TimeFormat))
	c.JSON(http.StatusOK, detail)
}
