package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/wellbot/internal/report"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	extractor report.Extractor
	log       *slog.Logger
}

func NewReportHandler(extractor report.Extractor, log *slog.Logger) *ReportHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReportHandler{extractor: extractor, log: log}
}

// Upload accepts a multipart "file" part. The file body itself is never read.
func (h *ReportHandler) Upload(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondPageError(ctx, http.StatusRequestEntityTooLarge, "file_too_large", "File too large")
			return
		}

		// a part sent with an empty filename is parsed as a plain form value
		if _, ok := ctx.GetPostForm("file"); ok {
			RespondPageError(ctx, http.StatusBadRequest, "no_selected_file", "No selected file")
			return
		}
		RespondPageError(ctx, http.StatusBadRequest, "no_file_part", "No file part")
		return
	}

	if fh.Filename == "" {
		RespondPageError(ctx, http.StatusBadRequest, "no_selected_file", "No selected file")
		return
	}

	if !report.IsAllowed(fh.Filename) {
		RespondPageError(ctx, http.StatusBadRequest, "invalid_file_type", "Invalid file type")
		return
	}

	out, err := h.extractor.Extract(ctx.Request.Context(), fh.Filename)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "report extraction failed", "err", err)
		RespondInternal(ctx, "Could not read report")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "report processed", "filename", fh.Filename, "size", fh.Size)
	ctx.JSON(http.StatusOK, out)
}
