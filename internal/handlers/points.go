package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/fideliza/internal/handlers/render"
	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/repository"
	"github.com/nkiryanov/fideliza/internal/service/ledger"
)

func handleAwardPoints(ledgerService ledgerService, l logger.Logger) http.Handler {
	type request struct {
		ClientID string `json:"client_id" validate:"required,uuid"`
		Points   *int64 `json:"points"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		entry, err := ledgerService.AwardPoints(r.Context(), p, uuid.MustParse(data.ClientID), data.Points)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newEntryResponse(entry), http.StatusCreated)
	})
}

func handleListBalances(ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		balances, err := ledgerService.GetBalancesByCompany(r.Context(), p)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		res := make([]companyBalanceResponse, 0, len(balances))
		for _, b := range balances {
			res = append(res, companyBalanceResponse{CompanyID: b.CompanyID, CompanyName: b.CompanyName, Total: b.Total})
		}
		render.JSON(w, res)
	})
}

func handleCompanyBalance(ledgerService ledgerService, l logger.Logger) http.Handler {
	type response struct {
		ClientID  uuid.UUID `json:"client_id"`
		CompanyID uuid.UUID `json:"company_id"`
		Balance   int64     `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}
		companyID, ok := pathUUID(w, r, "companyID")
		if !ok {
			return
		}

		// Staff ask for a client explicitly, clients always get their own balance
		clientID := p.UserID
		if p.Role.IsStaff() {
			id, ok := queryUUID(w, r, "client_id")
			if !ok {
				return
			}
			if id == nil {
				render.ServiceError(w, "client_id is required", http.StatusBadRequest)
				return
			}
			clientID = *id
		}

		balance, err := ledgerService.GetBalance(r.Context(), p, clientID, companyID)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, response{ClientID: clientID, CompanyID: companyID, Balance: balance})
	})
}

func handleListTransactions(ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		companyID, ok := queryUUID(w, r, "company_id")
		if !ok {
			return
		}
		clientID, ok := queryUUID(w, r, "client_id")
		if !ok {
			return
		}
		limit, ok := queryLimit(w, r)
		if !ok {
			return
		}

		order := repository.OrderNewestFirst
		if r.URL.Query().Get("order") == string(repository.OrderOldestFirst) {
			order = repository.OrderOldestFirst
		}

		entries, err := ledgerService.ListTransactions(r.Context(), p, ledger.TransactionFilter{
			ClientID:  clientID,
			CompanyID: companyID,
			Order:     order,
			Limit:     limit,
		})
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		render.JSON(w, newTransactionsResponse(entries))
	})
}

func handleDashboard(ledgerService ledgerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		d, err := ledgerService.Dashboard(r.Context(), p)
		if err != nil {
			renderServiceError(w, l, err)
			return
		}

		res := dashboardResponse{TotalPoints: d.TotalPoints}
		if d.LastActivity != nil {
			last := newEntryResponse(*d.LastActivity)
			res.LastActivity = &last
		}
		render.JSON(w, res)
	})
}
