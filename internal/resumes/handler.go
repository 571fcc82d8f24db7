package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/server/respond"
)

// Handler exposes résumé submissions over the JSON API.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches résumé routes. Extra handlers run before the
// submit endpoint only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submitMiddleware ...gin.HandlerFunc) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", append(submitMiddleware, h.submit)...)
	rg.GET("/resumes/:id", h.get)
}

func (h *Handler) submit(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	in, err := InputFromForm(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	res, err := h.Svc.Submit(c.Request.Context(), userID, in, nil)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit resume", nil)
		return
	}

	TagContext(c, res)
	if !res.OK() {
		details := gin.H{"state": string(res.FailedAt), "status": res.Status}
		if res.ID != "" {
			details["id"] = res.ID
		}
		respond.Error(c, http.StatusBadGateway, "workflow_failed", res.Status, details)
		return
	}

	respond.Created(c, "/api/v1/resumes/"+res.ID, gin.H{
		"id":       res.ID,
		"status":   res.Status,
		"redirect": "/resume/" + res.ID,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	view, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resume", nil)
		return
	}

	var fb any = ""
	if view.Feedback != nil {
		fb = view.Feedback
	}
	respond.OK(c, gin.H{
		"id":             view.ID,
		"companyName":    view.CompanyName,
		"jobTitle":       view.JobTitle,
		"jobDescription": view.JobDescription,
		"resumeUrl":      view.ResumeURL,
		"imageUrl":       view.ImageURL,
		"status":         view.Status,
		"tier":           view.OverallTier(),
		"feedback":       fb,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	respond.OK(c, gin.H{"resumes": items})
}

// TagContext exposes the workflow outcome to the request logger.
func TagContext(c *gin.Context, res Result) {
	if res.ID != "" {
		c.Set("resumeId", res.ID)
	}
	state := res.State
	if res.State == StateFailed {
		state = res.FailedAt
	}
	c.Set("workflowState", string(state))
}
