package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CompanyReport struct {
	CompanyID                uuid.UUID
	TotalPointsAwarded       int64
	UniqueCustomers          int64
	TotalRewardsRedeemed     int64
	AveragePointsPerCustomer decimal.Decimal
}
