package handlers

import (
	"net/http"

	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/logger"
)

func handleReportSummary(reportService reportService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		report, err := reportService.Summary(r.Context(), p)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, reportResponse{
			CompanyID:                report.CompanyID,
			TotalPointsAwarded:       report.TotalPointsAwarded,
			UniqueCustomers:          report.UniqueCustomers,
			TotalRewardsRedeemed:     report.TotalRewardsRedeemed,
			AveragePointsPerCustomer: report.AveragePointsPerCustomer,
		})
	})
}
