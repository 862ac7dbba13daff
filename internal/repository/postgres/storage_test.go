package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
	"github.com/nkiryanov/fideliza/internal/testutil"
)

func TestStorage(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("InTx", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			t.Run("commit on success", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					var company models.Company
					err := storage.InTx(t.Context(), func(s repository.Storage) error {
						var err error
						company, err = s.Company().CreateCompany(t.Context(), "acme")
						return err
					})
					require.NoError(t, err)

					_, err = storage.Company().GetCompany(t.Context(), company.ID)
					require.NoError(t, err, "company has to be visible after commit")
				})
			})

			t.Run("rollback on error", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					var company models.Company
					boom := errors.New("boom")

					err := storage.InTx(t.Context(), func(s repository.Storage) error {
						var err error
						company, err = s.Company().CreateCompany(t.Context(), "acme")
						require.NoError(t, err)
						return boom
					})
					require.ErrorIs(t, err, boom, "fn error has to be returned as is")

					_, err = storage.Company().GetCompany(t.Context(), company.ID)
					require.ErrorIs(t, err, apperrors.ErrCompanyNotFound, "company has to be rolled back")
				})
			})

			t.Run("rollback on panic", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					var company models.Company

					require.PanicsWithValue(t, "boom", func() {
						_ = storage.InTx(t.Context(), func(s repository.Storage) error {
							var err error
							company, err = s.Company().CreateCompany(t.Context(), "acme")
							require.NoError(t, err)
							panic("boom")
						})
					}, "panic has to be propagated")

					_, err := storage.Company().GetCompany(t.Context(), company.ID)
					require.ErrorIs(t, err, apperrors.ErrCompanyNotFound, "company has to be rolled back")
				})
			})
		})
	})

	t.Run("Company", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			company, err := storage.Company().CreateCompany(t.Context(), "acme")
			require.NoError(t, err)
			require.Equal(t, "acme", company.Name)

			got, err := storage.Company().GetCompany(t.Context(), company.ID)
			require.NoError(t, err)
			require.Equal(t, company.ID, got.ID)

			t.Run("duplicate name", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Company().CreateCompany(t.Context(), "acme")

					require.ErrorIs(t, err, apperrors.ErrCompanyAlreadyExists)
				})
			})

			t.Run("not found", func(t *testing.T) {
				_, err := storage.Company().GetCompany(t.Context(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
			})
		})
	})

	t.Run("Account", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")

			t.Run("create client", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					account, err := storage.Account().CreateAccount(t.Context(), models.Account{
						Email: "alice@example.com",
						Name:  "Alice",
						Role:  models.RoleClient,
					})
					require.NoError(t, err)

					got, err := storage.Account().GetAccount(t.Context(), account.ID)
					require.NoError(t, err)
					require.Equal(t, models.RoleClient, got.Role)
					require.Nil(t, got.CompanyID)
					require.Equal(t, "alice@example.com", got.Email)
				})
			})

			t.Run("staff keeps company", func(t *testing.T) {
				got, err := storage.Account().GetAccount(t.Context(), acme.Admin.ID)

				require.NoError(t, err)
				require.Equal(t, models.RoleAdmin, got.Role)
				require.NotNil(t, got.CompanyID)
				require.Equal(t, acme.Company.ID, *got.CompanyID)
			})

			t.Run("duplicate email", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().CreateAccount(t.Context(), models.Account{Email: acme.Admin.Email, Name: "Dup", Role: models.RoleClient})

					require.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)
				})
			})

			t.Run("client with company", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().CreateAccount(t.Context(), models.Account{
						Email:     "bob@example.com",
						Name:      "Bob",
						Role:      models.RoleClient,
						CompanyID: &acme.Company.ID,
					})

					require.ErrorIs(t, err, apperrors.ErrInvalidInput)
				})
			})

			t.Run("staff without company", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Account().CreateAccount(t.Context(), models.Account{
						Email: "carol@example.com",
						Name:  "Carol",
						Role:  models.RoleCollaborator,
					})

					require.ErrorIs(t, err, apperrors.ErrInvalidInput)
				})
			})

			t.Run("not found", func(t *testing.T) {
				_, err := storage.Account().GetAccount(t.Context(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
			})
		})
	})

	t.Run("Report", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")
			globex := testutil.CreateCompany(t, storage, "globex")
			alice := testutil.CreateClient(t, storage, "alice")
			bob := testutil.CreateClient(t, storage, "bob")

			testutil.Credit(t, storage, alice, acme, 100)
			testutil.Credit(t, storage, alice, acme, 50)
			testutil.Credit(t, storage, bob, acme, 30)
			testutil.Credit(t, storage, bob, globex, 999)

			reward, err := storage.Reward().CreateReward(t.Context(), models.Reward{CompanyID: acme.Company.ID, Name: "Coffee", PointsRequired: 40})
			require.NoError(t, err)
			entry, err := storage.Ledger().Append(t.Context(), models.LedgerEntry{ClientID: alice.ID, CompanyID: acme.Company.ID, AwardedByID: alice.ID, Points: -40})
			require.NoError(t, err)
			_, err = storage.Redemption().CreateRedemption(t.Context(), models.Redemption{
				RewardID: reward.ID, ClientID: alice.ID, CompanyID: acme.Company.ID, EntryID: entry.ID, PointsSpent: 40,
			})
			require.NoError(t, err)

			awarded, err := storage.Report().PointsAwarded(t.Context(), acme.Company.ID)
			require.NoError(t, err)
			require.EqualValues(t, 180, awarded, "debits are not awarded points")

			customers, err := storage.Report().UniqueCustomers(t.Context(), acme.Company.ID)
			require.NoError(t, err)
			require.EqualValues(t, 2, customers)

			redeemed, err := storage.Report().RedemptionsCount(t.Context(), acme.Company.ID)
			require.NoError(t, err)
			require.EqualValues(t, 1, redeemed)

			t.Run("empty company", func(t *testing.T) {
				initech := testutil.CreateCompany(t, storage, "initech")

				awarded, err := storage.Report().PointsAwarded(t.Context(), initech.Company.ID)
				require.NoError(t, err)
				require.Zero(t, awarded)

				customers, err := storage.Report().UniqueCustomers(t.Context(), initech.Company.ID)
				require.NoError(t, err)
				require.Zero(t, customers)
			})
		})
	})
}

// Records how the transaction was finished
type recordingTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *recordingTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *recordingTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type recordingDB struct {
	DBTX
	tx *recordingTx
}

func (db *recordingDB) Begin(context.Context) (pgx.Tx, error) {
	return db.tx, nil
}

func TestStorage_InTxFinish(t *testing.T) {
	tests := []struct {
		name         string
		fn           func(repository.Storage) error
		wantPanic    bool
		wantCommit   bool
		wantRollback bool
	}{
		{
			name:       "commit on success",
			fn:         func(repository.Storage) error { return nil },
			wantCommit: true,
		},
		{
			name:         "rollback on error",
			fn:           func(repository.Storage) error { return errors.New("boom") },
			wantRollback: true,
		},
		{
			name:         "rollback on panic",
			fn:           func(repository.Storage) error { panic("boom") },
			wantPanic:    true,
			wantRollback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &recordingDB{tx: &recordingTx{}}
			storage := NewStorage(db)

			run := func() { _ = storage.InTx(t.Context(), tt.fn) }
			if tt.wantPanic {
				require.Panics(t, run, "panic has to be propagated")
			} else {
				require.NotPanics(t, run)
			}

			require.Equal(t, tt.wantCommit, db.tx.committed)
			require.Equal(t, tt.wantRollback, db.tx.rolledBack)
		})
	}
}
