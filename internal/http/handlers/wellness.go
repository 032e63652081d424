package handlers

import (
	"net/http"

	"github.com/geocoder89/wellbot/internal/wellness"
	"github.com/gin-gonic/gin"
)

// AnalysisRequest keeps both fields loose: numbers, numeric strings and
// garbage are all accepted and garbage scores a BMI of 0.
type AnalysisRequest struct {
	Weight any `json:"weight"`
	Height any `json:"height"`
}

func Analysis(ctx *gin.Context) {
	var req AnalysisRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ctx.JSON(http.StatusOK, wellness.Assess(req.Weight, req.Height))
}
