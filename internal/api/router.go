package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册同步管理与嘉年华查询路由
func RegisterRoutes(r gin.IRouter, syncHandler *SyncHandler, carnivalHandler *CarnivalHandler) {
	syncGroup := r.Group("/sync")
	syncGroup.POST("/mysideline", syncHandler.TriggerSync)
	syncGroup.POST("/mysideline/deactivate-past", syncHandler.DeactivatePast)
	syncGroup.GET("/status", syncHandler.Status)
	syncGroup.GET("/logs", syncHandler.ListLogs)

	apiGroup := r.Group("/api")
	apiGroup.GET("/carnivals", carnivalHandler.ListCarnivals)
	apiGroup.GET("/carnivals/:id", carnivalHandler.GetCarnival)
}
