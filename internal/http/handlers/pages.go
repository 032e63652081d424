package handlers

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PagesHandler serves the static html pages of the browser UI.
type PagesHandler struct {
	dir string
	log *slog.Logger
}

func NewPagesHandler(dir string, log *slog.Logger) *PagesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PagesHandler{dir: dir, log: log}
}

// Page serves <dir>/<name>.html, or a 404 JSON body when it is missing.
func (h *PagesHandler) Page(name string) gin.HandlerFunc {
	path := filepath.Join(h.dir, name+".html")

	return func(ctx *gin.Context) {
		if _, err := os.Stat(path); err != nil {
			RespondNotFound(ctx, "Page not found")
			return
		}
		ctx.File(path)
	}
}

func (h *PagesHandler) Dashboard(ctx *gin.Context) {
	if ctx.Query("token") != "" {
		h.log.DebugContext(ctx.Request.Context(), "dashboard opened from login redirect")
	} else {
		h.log.DebugContext(ctx.Request.Context(), "dashboard opened directly")
	}

	h.Page("dashboard")(ctx)
}
