package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fitgrid/internal/models"
)

func (h *Handler) CreateClass(c *gin.Context) {
	var req models.CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	occ, err := h.svc.CreateClass(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, occ)
}

func (h *Handler) ListClasses(c *gin.Context) {
	var filter models.OccurrenceFilter
	if v := c.Query("room_id"); v != "" {
		filter.RoomID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("instructor_id"); v != "" {
		filter.InstructorID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("series_id"); v != "" {
		filter.SeriesID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = t
		}
	}

	occs, err := h.svc.ListClasses(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occs)
}

func (h *Handler) GetClass(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	occ, err := h.svc.GetClass(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *Handler) UpdateClass(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	occ, err := h.svc.UpdateClass(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *Handler) DeleteClass(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteClass(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ChangeClassStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	occ, err := h.svc.ChangeClassStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *Handler) ReassignInstructor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.ReassignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	occ, err := h.svc.ReassignInstructor(c.Request.Context(), id, req.InstructorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

// Schedule serves the cached public schedule.
func (h *Handler) Schedule(c *gin.Context) {
	body, err := h.svc.Schedule(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// SearchClasses serves the fuzzy class search.
func (h *Handler) SearchClasses(c *gin.Context) {
	docs, err := h.svc.SearchClasses(c.Request.Context(), c.Query("q"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": docs, "count": len(docs)})
}
