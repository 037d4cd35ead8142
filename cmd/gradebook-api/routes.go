package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/handler"
)

type handlers struct {
	course  *handler.CourseHandler
	exports *handler.ExportHandler
}

// registerRoutes mounts the course API on r. Export routes are skipped when
// exports are disabled.
func registerRoutes(r gin.IRouter, h handlers) {
	course := r.Group("/course")
	course.GET("/current", h.course.Current)
	course.POST("/setup", h.course.Setup)
	course.PATCH("/component/:id", h.course.UpdateComponentGrade)
	course.POST("/reset-grades", h.course.ResetGrades)
	course.POST("/archive", h.course.Archive)
	course.GET("/archived", h.course.ListArchived)
	course.GET("/archived/:id", h.course.GetArchived)

	if h.exports == nil {
		return
	}
	course.POST("/exports", h.exports.Create)
	course.GET("/exports/:id", h.exports.Status)
	r.GET("/exports/:token", h.exports.Download)
}
