package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pos-backend/api/responses"
	"github.com/angelmondragon/pos-backend/internal/reports"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

func reportHandler[T any](logg *logger.Logger, load func(ctx context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ReportsDailySales(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(logg, svc.DailySales)
}

func ReportsMonthlySales(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(logg, svc.MonthlySales)
}

func ReportsUserSales(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(logg, svc.SellerSales)
}

func ReportsTopProducts(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(logg, svc.TopProducts)
}

func ReportsTotalIncome(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return reportHandler(logg, svc.TotalIncome)
}
