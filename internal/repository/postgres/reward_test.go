package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/fideliza/internal/apperrors"
	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
	"github.com/nkiryanov/fideliza/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestReward(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("CreateReward", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					reward, err := storage.Reward().CreateReward(t.Context(), models.Reward{
						CompanyID:      acme.Company.ID,
						Name:           "Free coffee",
						Description:    ptr("Any size"),
						PointsRequired: 100,
					})

					require.NoError(t, err)
					require.NotEqual(t, uuid.Nil, reward.ID)
					require.Equal(t, "Free coffee", reward.Name)
					require.Equal(t, "Any size", *reward.Description)
					require.EqualValues(t, 100, reward.PointsRequired)

					got, err := storage.Reward().GetReward(t.Context(), reward.ID)
					require.NoError(t, err)
					require.Equal(t, reward.ID, got.ID)
				})
			})

			t.Run("non positive cost", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Reward().CreateReward(t.Context(), models.Reward{
						CompanyID:      acme.Company.ID,
						Name:           "Free coffee",
						PointsRequired: 0,
					})

					require.ErrorIs(t, err, apperrors.ErrInvalidInput)
				})
			})

			t.Run("unknown company", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Reward().CreateReward(t.Context(), models.Reward{
						CompanyID:      uuid.New(),
						Name:           "Free coffee",
						PointsRequired: 10,
					})

					require.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
				})
			})
		})
	})

	t.Run("GetReward", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			_, err := storage.Reward().GetReward(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrRewardNotFound)
			require.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	})

	t.Run("UpdateReward", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")
			globex := testutil.CreateCompany(t, storage, "globex")
			reward, err := storage.Reward().CreateReward(t.Context(), models.Reward{
				CompanyID:      acme.Company.ID,
				Name:           "Free coffee",
				Description:    ptr("Any size"),
				PointsRequired: 100,
			})
			require.NoError(t, err)

			t.Run("partial update", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					updated, err := storage.Reward().UpdateReward(t.Context(), reward.ID, acme.Company.ID, repository.RewardUpdate{
						PointsRequired: ptr(int64(80)),
					})

					require.NoError(t, err)
					require.EqualValues(t, 80, updated.PointsRequired)
					require.Equal(t, "Free coffee", updated.Name, "name has to be left untouched")
					require.Equal(t, "Any size", *updated.Description)
				})
			})

			t.Run("other company", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Reward().UpdateReward(t.Context(), reward.ID, globex.Company.ID, repository.RewardUpdate{
						Name: ptr("Stolen"),
					})

					require.ErrorIs(t, err, apperrors.ErrRewardNotFound)
				})
			})

			t.Run("invalid cost", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Reward().UpdateReward(t.Context(), reward.ID, acme.Company.ID, repository.RewardUpdate{
						PointsRequired: ptr(int64(-1)),
					})

					require.ErrorIs(t, err, apperrors.ErrInvalidInput)
				})
			})
		})
	})

	t.Run("DeleteReward", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")
			globex := testutil.CreateCompany(t, storage, "globex")
			reward, err := storage.Reward().CreateReward(t.Context(), models.Reward{
				CompanyID:      acme.Company.ID,
				Name:           "Free coffee",
				PointsRequired: 100,
			})
			require.NoError(t, err)

			t.Run("delete hides reward", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					deleted, err := storage.Reward().DeleteReward(t.Context(), reward.ID, acme.Company.ID)
					require.NoError(t, err)
					require.Equal(t, reward.ID, deleted.ID)

					_, err = storage.Reward().GetReward(t.Context(), reward.ID)
					require.ErrorIs(t, err, apperrors.ErrRewardNotFound)

					rewards, err := storage.Reward().ListRewards(t.Context(), acme.Company.ID)
					require.NoError(t, err)
					require.Empty(t, rewards)

					_, err = storage.Reward().DeleteReward(t.Context(), reward.ID, acme.Company.ID)
					require.ErrorIs(t, err, apperrors.ErrRewardNotFound, "second delete has nothing to delete")
				})
			})

			t.Run("other company", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Reward().DeleteReward(t.Context(), reward.ID, globex.Company.ID)

					require.ErrorIs(t, err, apperrors.ErrRewardNotFound)
				})
			})
		})
	})

	t.Run("ListRewards", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			acme := testutil.CreateCompany(t, storage, "acme")
			globex := testutil.CreateCompany(t, storage, "globex")
			initech := testutil.CreateCompany(t, storage, "initech")

			create := func(f testutil.CompanyFixture, name string, cost int64) models.Reward {
				r, err := storage.Reward().CreateReward(t.Context(), models.Reward{CompanyID: f.Company.ID, Name: name, PointsRequired: cost})
				require.NoError(t, err)
				return r
			}
			mug := create(acme, "Mug", 300)
			coffee := create(acme, "Coffee", 100)
			hat := create(globex, "Hat", 200)
			create(initech, "Stapler", 50)

			t.Run("single company", func(t *testing.T) {
				rewards, err := storage.Reward().ListRewards(t.Context(), acme.Company.ID)

				require.NoError(t, err)
				require.Len(t, rewards, 2)
				require.Equal(t, coffee.ID, rewards[0].ID, "cheapest first")
				require.Equal(t, mug.ID, rewards[1].ID)
			})

			t.Run("several companies", func(t *testing.T) {
				rewards, err := storage.Reward().ListRewards(t.Context(), acme.Company.ID, globex.Company.ID)

				require.NoError(t, err)
				require.Len(t, rewards, 3)
				require.Equal(t, []uuid.UUID{coffee.ID, hat.ID, mug.ID}, []uuid.UUID{rewards[0].ID, rewards[1].ID, rewards[2].ID})
			})

			t.Run("no companies", func(t *testing.T) {
				rewards, err := storage.Reward().ListRewards(t.Context())

				require.NoError(t, err)
				require.Empty(t, rewards)
			})
		})
	})
}
