package httpapi

import "github.com/seenimoa/bonosportal/internal/ports"

var (
	_ ports.AuthRepository              = (*AuthAPI)(nil)
	_ ports.IssuerBondRepository        = (*IssuerBondsAPI)(nil)
	_ ports.InvestorBondRepository      = (*InvestorBondsAPI)(nil)
	_ ports.GeneralBondRepository       = (*GeneralBondsAPI)(nil)
	_ ports.BondCalculationRepository   = (*BondCalculationsAPI)(nil)
	_ ports.CalculationRepository       = (*CalculationsAPI)(nil)
	_ ports.UserManagementRepository    = (*UsersAPI)(nil)
	_ ports.RoleManagementRepository    = (*UsersAPI)(nil)
	_ ports.ProfileManagementRepository = (*UsersAPI)(nil)
	_ ports.HealthChecker               = (*Client)(nil)
)
