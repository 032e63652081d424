package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthData is the chart payload for the dashboard. Values are fixed demo
// data until per user tracking exists.
type HealthData struct {
	WellnessScore int       `json:"wellness_score"`
	Activity      []int     `json:"activity"`
	BMIHistory    []float64 `json:"bmi_history"`
	LabelsDays    []string  `json:"labels_days"`
	LabelsMonths  []string  `json:"labels_months"`
}

func demoHealthData() HealthData {
	return HealthData{
		WellnessScore: 78,
		Activity:      []int{65, 59, 80, 81, 56, 55, 40},
		BMIHistory:    []float64{22.5, 22.4, 22.6, 22.3, 22.1},
		LabelsDays:    []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		LabelsMonths:  []string{"Jan", "Feb", "Mar", "Apr", "May"},
	}
}

func GetHealthData(ctx *gin.Context) {
	RespondJSONWithETag(ctx, http.StatusOK, demoHealthData())
}
