package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/fideliza/internal/logger"
	"github.com/nkiryanov/fideliza/internal/repository/postgres"
	"github.com/nkiryanov/fideliza/internal/service/ledger"
	"github.com/nkiryanov/fideliza/internal/service/redemption"
	"github.com/nkiryanov/fideliza/internal/service/reward"
	"github.com/nkiryanov/fideliza/internal/testutil"
)

func Test_API(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	decode := func(t *testing.T, body string, v any) {
		t.Helper()
		require.NoError(t, json.Unmarshal([]byte(body), v), "body: %s", body)
	}

	t.Run("award redeem and spend history", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			l := logger.NewNoOpLogger()
			api := newTestAPI(t, Services{
				Ledger:      ledger.NewService(storage, l),
				Rewards:     reward.NewService(storage, l),
				Redemptions: redemption.NewCoordinator(redemption.Config{}, storage, l),
			})

			acme := testutil.CreateCompany(t, storage, "acme")
			admin := acme.AdminPrincipal()
			collaborator := acme.CollaboratorPrincipal()
			client := testutil.Principal(testutil.CreateClient(t, storage, "alice"))

			// Admin sets up catalog
			code, body := api.do(t, &admin, http.MethodPost, "/rewards", `{"name": " Coffee ", "points_required": 10}`)
			require.Equalf(t, http.StatusCreated, code, "body: %s", body)
			var created rewardResponse
			decode(t, body, &created)
			require.Equal(t, "Coffee", created.Name)
			require.Equal(t, acme.Company.ID, created.CompanyID)

			// Clients can't manage catalog
			code, _ = api.do(t, &client, http.MethodPost, "/rewards", `{"name": "Tea", "points_required": 5}`)
			require.Equal(t, http.StatusForbidden, code)

			// Default award then explicit one
			code, body = api.do(t, &collaborator, http.MethodPost, "/points", fmt.Sprintf(`{"client_id": "%s"}`, client.UserID))
			require.Equalf(t, http.StatusCreated, code, "body: %s", body)
			var entry entryResponse
			decode(t, body, &entry)
			require.EqualValues(t, 1, entry.Points)
			require.Equal(t, collaborator.UserID, entry.AwardedByID)

			code, body = api.do(t, &collaborator, http.MethodPost, "/points", fmt.Sprintf(`{"client_id": "%s", "points": 11}`, client.UserID))
			require.Equalf(t, http.StatusCreated, code, "body: %s", body)

			code, body = api.do(t, &collaborator, http.MethodPost, "/points", fmt.Sprintf(`{"client_id": "%s", "points": 0}`, client.UserID))
			require.Equalf(t, http.StatusUnprocessableEntity, code, "body: %s", body)

			// Clients can't award
			code, _ = api.do(t, &client, http.MethodPost, "/points", fmt.Sprintf(`{"client_id": "%s"}`, client.UserID))
			require.Equal(t, http.StatusForbidden, code)

			code, body = api.do(t, &client, http.MethodGet, "/rewards/status", "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			var statuses []rewardStatusResponse
			decode(t, body, &statuses)
			require.Len(t, statuses, 1)
			require.True(t, statuses[0].Redeemable)
			require.EqualValues(t, 0, statuses[0].PointsToRedeem)

			// Redeem once: 12 -> 2
			code, body = api.do(t, &client, http.MethodPost, "/rewards/redeem", fmt.Sprintf(`{"reward_id": "%s"}`, created.ID))
			require.Equalf(t, http.StatusCreated, code, "body: %s", body)
			var redeemed redemptionResponse
			decode(t, body, &redeemed)
			require.EqualValues(t, 10, redeemed.PointsSpent)
			require.Equal(t, client.UserID, redeemed.ClientID)

			code, body = api.do(t, &client, http.MethodGet, "/points/balances/"+acme.Company.ID.String(), "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			require.JSONEq(t, fmt.Sprintf(`{"client_id": "%s", "company_id": "%s", "balance": 2}`, client.UserID, acme.Company.ID), body)

			// Second redeem is rejected with amounts
			code, body = api.do(t, &client, http.MethodPost, "/rewards/redeem", fmt.Sprintf(`{"reward_id": "%s"}`, created.ID))
			require.Equalf(t, http.StatusBadRequest, code, "body: %s", body)
			require.JSONEq(t, `{
				"error": "insufficient_points",
				"message": "insufficient points: current 2, required 10",
				"current": 2,
				"required": 10
			}`, body)

			// Debit is the newest ledger entry and pairs with the redemption
			code, body = api.do(t, &client, http.MethodGet, "/points/transactions", "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			var entries []transactionResponse
			decode(t, body, &entries)
			require.Len(t, entries, 3)
			require.EqualValues(t, -10, entries[0].Points)
			require.Equal(t, redeemed.EntryID, entries[0].ID)
			require.Equal(t, client.UserID, entries[0].AwardedBy.ID, "spend is attributed to the client")
			require.Equal(t, "alice", entries[0].AwardedBy.Name)
			require.Equal(t, collaborator.UserID, entries[1].AwardedBy.ID)

			// Staff history names the client and the issuer
			code, body = api.do(t, &admin, http.MethodGet, "/points/transactions?client_id="+client.UserID.String(), "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			var staffEntries []transactionResponse
			decode(t, body, &staffEntries)
			require.Len(t, staffEntries, 3)
			require.Equal(t, client.UserID, staffEntries[2].Client.ID)
			require.Equal(t, "alice", staffEntries[2].Client.Name)
			require.Equal(t, "acme collaborator", staffEntries[2].AwardedBy.Name)

			// Staff see the balance of the client within own company
			code, body = api.do(t, &admin, http.MethodGet, "/points/balances/"+acme.Company.ID.String()+"?client_id="+client.UserID.String(), "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)

			// Deleted reward is gone from catalog, history stays
			code, _ = api.do(t, &admin, http.MethodDelete, "/rewards/"+created.ID.String(), "")
			require.Equal(t, http.StatusOK, code)

			code, _ = api.do(t, &client, http.MethodGet, "/rewards/"+created.ID.String(), "")
			require.Equal(t, http.StatusNotFound, code)

			code, body = api.do(t, &client, http.MethodPost, "/rewards/redeem", fmt.Sprintf(`{"reward_id": "%s"}`, created.ID))
			require.Equalf(t, http.StatusNotFound, code, "body: %s", body)

			code, body = api.do(t, &client, http.MethodGet, "/redemptions", "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			var redemptions []redemptionResponse
			decode(t, body, &redemptions)
			require.Len(t, redemptions, 1)
			require.Equal(t, redeemed.ID, redemptions[0].ID)

			code, body = api.do(t, &client, http.MethodGet, "/dashboard", "")
			require.Equalf(t, http.StatusOK, code, "body: %s", body)
			var dashboard dashboardResponse
			decode(t, body, &dashboard)
			require.EqualValues(t, 2, dashboard.TotalPoints)
			require.NotNil(t, dashboard.LastActivity)
			require.EqualValues(t, -10, dashboard.LastActivity.Points)
		})
	})
}
