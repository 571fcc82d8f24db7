package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resurate/internal/auth"
	"resurate/internal/platform"
	"resurate/internal/resumes"
	"resurate/internal/shared/server/middleware"
	"resurate/internal/shared/telemetry"
	"resurate/internal/wipe"
)

// Handler renders the pages.
type Handler struct {
	Resumes       *resumes.Service
	Wipe          *wipe.Service
	Gate          *auth.Gate
	GoogleEnabled bool
	DevSignIn     bool

	r *renderer
}

func NewHandler(res *resumes.Service, wp *wipe.Service, gate *auth.Gate) (*Handler, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{Resumes: res, Wipe: wp, Gate: gate, r: r}, nil
}

// RegisterRoutes attaches the pages behind the gate. Extra handlers run before
// the upload form post only.
func (h *Handler) RegisterRoutes(r gin.IRoutes, uploadMiddleware ...gin.HandlerFunc) {
	protected := h.Gate.Page(true)
	anonymous := h.Gate.Page(false)

	r.GET("/auth", anonymous, h.authPage)
	r.GET("/", protected, h.home)
	r.GET("/upload", protected, h.uploadForm)
	r.POST("/upload", append([]gin.HandlerFunc{protected}, append(uploadMiddleware, h.upload)...)...)
	r.GET("/resume/:id", protected, h.resume)
	r.GET("/wipe", protected, h.wipeForm)
	r.POST("/wipe", protected, h.wipe)
}

// Loading renders the page shown while authentication is unresolved.
func (h *Handler) Loading(c *gin.Context) {
	h.r.render(c, http.StatusServiceUnavailable, "loading", "Loading", nil)
}

type authData struct {
	Next          string
	Error         string
	GoogleEnabled bool
	DevSignIn     bool
}

// AuthError re-renders the sign-in page with a message.
func (h *Handler) AuthError(c *gin.Context, status int, message string) {
	h.r.render(c, status, "auth", "Sign in", authData{
		Next:          auth.SafeNext(c.PostForm("next")),
		Error:         message,
		GoogleEnabled: h.GoogleEnabled,
		DevSignIn:     h.DevSignIn,
	})
}

func (h *Handler) authPage(c *gin.Context) {
	h.r.render(c, http.StatusOK, "auth", "Sign in", authData{
		Next:          auth.SafeNext(c.Query("next")),
		GoogleEnabled: h.GoogleEnabled,
		DevSignIn:     h.DevSignIn,
	})
}

type homeData struct {
	Resumes []resumes.Summary
}

func (h *Handler) home(c *gin.Context) {
	items, err := h.Resumes.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load resumes")
		return
	}
	h.r.render(c, http.StatusOK, "home", "Home", homeData{Resumes: items})
}

type uploadForm struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
}

type uploadData struct {
	Form       uploadForm
	Statuses   []string
	Status     string
	Processing bool
	Error      string
	MaxMB      int
}

func (h *Handler) uploadForm(c *gin.Context) {
	h.r.render(c, http.StatusOK, "upload", "Upload", uploadData{MaxMB: resumes.MaxFileBytes >> 20})
}

func (h *Handler) upload(c *gin.Context) {
	in, err := resumes.InputFromForm(c)
	data := uploadData{
		Form: uploadForm{
			CompanyName:    in.CompanyName,
			JobTitle:       in.JobTitle,
			JobDescription: in.JobDescription,
		},
		MaxMB: resumes.MaxFileBytes >> 20,
	}
	if err != nil {
		data.Error = err.Error()
		h.r.render(c, http.StatusBadRequest, "upload", "Upload", data)
		return
	}

	res, err := h.Resumes.Submit(c.Request.Context(), middleware.UserIDFromContext(c), in, func(state resumes.State, status string) {
		data.Statuses = append(data.Statuses, status)
	})
	if err != nil {
		data.Error = err.Error()
		status := http.StatusBadRequest
		if !errors.Is(err, resumes.ErrInvalidInput) {
			status = http.StatusInternalServerError
			data.Error = "Something went wrong, please try again."
		}
		h.r.render(c, status, "upload", "Upload", data)
		return
	}

	resumes.TagContext(c, res)
	if !res.OK() {
		data.Processing = true
		data.Status = res.Status
		h.r.render(c, http.StatusBadGateway, "upload", "Upload", data)
		return
	}
	c.Redirect(http.StatusSeeOther, "/resume/"+res.ID)
}

// Limited re-renders the upload form when the caller is over their upload
// allowance.
func (h *Handler) Limited(c *gin.Context, retryAfter time.Duration) {
	data := uploadData{
		MaxMB: resumes.MaxFileBytes >> 20,
		Error: fmt.Sprintf("Too many uploads, please try again in %d seconds.", middleware.RetryAfterSeconds(retryAfter)),
	}
	h.r.render(c, http.StatusTooManyRequests, "upload", "Upload", data)
}

type resumeData struct {
	NotFound bool
	View     resumes.View
}

func (h *Handler) resume(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)

	view, err := h.Resumes.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			h.r.render(c, http.StatusNotFound, "resume", "Resume not found", resumeData{NotFound: true})
			return
		}
		c.String(http.StatusInternalServerError, "failed to load resume")
		return
	}
	h.r.render(c, http.StatusOK, "resume", "Review", resumeData{View: view})
}

type wipeData struct {
	Files      []platform.FSItem
	Report     *wipe.Report
	Error      string
	ListFailed bool
}

var wipeListFailed = wipeData{Error: "Failed to load files.", ListFailed: true}

func (h *Handler) wipeForm(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	items, err := h.Wipe.List(c.Request.Context(), userID)
	if err != nil {
		telemetry.Warn("web.wipe_list_failed", map[string]any{"user_id": userID, "error": err})
		h.r.render(c, http.StatusInternalServerError, "wipe", "Wipe", wipeListFailed)
		return
	}
	h.r.render(c, http.StatusOK, "wipe", "Wipe", wipeData{Files: items})
}

func (h *Handler) wipe(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if c.PostForm("confirm") != "yes" {
		items, err := h.Wipe.List(c.Request.Context(), userID)
		if err != nil {
			telemetry.Warn("web.wipe_list_failed", map[string]any{"user_id": userID, "error": err})
			h.r.render(c, http.StatusInternalServerError, "wipe", "Wipe", wipeListFailed)
			return
		}
		h.r.render(c, http.StatusBadRequest, "wipe", "Wipe", wipeData{Files: items, Error: "Please confirm the wipe."})
		return
	}

	report, err := h.Wipe.Run(c.Request.Context(), userID)
	if err != nil {
		h.r.render(c, http.StatusInternalServerError, "wipe", "Wipe", wipeData{Files: report.Files, Error: "Failed to wipe data."})
		return
	}
	h.r.render(c, http.StatusOK, "wipe", "Wipe", wipeData{Files: report.Files, Report: &report})
}
