package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/fideliza/internal/models"
	"github.com/nkiryanov/fideliza/internal/repository"
)

// Company with admin and collaborator accounts
type CompanyFixture struct {
	Company      models.Company
	Admin        models.Account
	Collaborator models.Account
}

func (f CompanyFixture) AdminPrincipal() models.Principal {
	return Principal(f.Admin)
}

func (f CompanyFixture) CollaboratorPrincipal() models.Principal {
	return Principal(f.Collaborator)
}

func Principal(a models.Account) models.Principal {
	return models.Principal{UserID: a.ID, Role: a.Role, CompanyID: a.CompanyID}
}

func CreateCompany(t *testing.T, s repository.Storage, name string) CompanyFixture {
	t.Helper()

	company, err := s.Company().CreateCompany(t.Context(), name)
	require.NoError(t, err, "creating company should not fail")

	admin, err := s.Account().CreateAccount(t.Context(), models.Account{
		Email:     "admin-" + uuid.NewString() + "@fideliza.test",
		Name:      name + " admin",
		Role:      models.RoleAdmin,
		CompanyID: &company.ID,
	})
	require.NoError(t, err, "creating company admin should not fail")

	collaborator, err := s.Account().CreateAccount(t.Context(), models.Account{
		Email:     "staff-" + uuid.NewString() + "@fideliza.test",
		Name:      name + " collaborator",
		Role:      models.RoleCollaborator,
		CompanyID: &company.ID,
	})
	require.NoError(t, err, "creating company collaborator should not fail")

	return CompanyFixture{Company: company, Admin: admin, Collaborator: collaborator}
}

func CreateClient(t *testing.T, s repository.Storage, name string) models.Account {
	t.Helper()

	client, err := s.Account().CreateAccount(t.Context(), models.Account{
		Email: name + "-" + uuid.NewString() + "@fideliza.test",
		Name:  name,
		Role:  models.RoleClient,
	})
	require.NoError(t, err, "creating client should not fail")

	return client
}

// Append credit entry directly to the ledger, bypassing award checks
func Credit(t *testing.T, s repository.Storage, client models.Account, f CompanyFixture, points int64) models.LedgerEntry {
	t.Helper()

	entry, err := s.Ledger().Append(t.Context(), models.LedgerEntry{
		ClientID:    client.ID,
		CompanyID:   f.Company.ID,
		AwardedByID: f.Collaborator.ID,
		Points:      points,
	})
	require.NoError(t, err, "appending credit entry should not fail")

	return entry
}
