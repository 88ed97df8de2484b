// Package ports declares the repository interfaces the application depends
// on. Transport adapters in internal/adapters implement them; tests swap in
// fakes.
package ports

import (
	"context"
	"encoding/json"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// --- Authentication ---

// AuthRepository signs users in and resolves the current profile.
type AuthRepository interface {
	// SignIn exchanges credentials for a token and a partial identity.
	SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error)
	SignUp(ctx context.Context, data models.SignUpData) (*models.Identity, error)
	// Profile returns the identity of the bearer of the current token.
	Profile(ctx context.Context) (*models.Identity, error)
}

// --- Bonds ---

// IssuerBondRepository manages the bonds owned by the signed-in issuer.
type IssuerBondRepository interface {
	ListMine(ctx context.Context) ([]models.Bond, error)
	Create(ctx context.Context, req models.CreateBondRequest) (*models.Bond, error)
	GetMine(ctx context.Context, id int64) (*models.Bond, error)
	Update(ctx context.Context, id int64, req models.CreateBondRequest) (*models.Bond, error)
	Delete(ctx context.Context, id int64) error
	CashFlow(ctx context.Context, id int64) ([]models.CashFlowEntry, error)
}

// InvestorBondRepository reads the public bond catalog.
type InvestorBondRepository interface {
	Catalog(ctx context.Context) ([]models.Bond, error)
	CatalogDetail(ctx context.Context, id int64) (*models.Bond, error)
	ByCurrency(ctx context.Context, moneda string) ([]models.Bond, error)
	ByRate(ctx context.Context, filter models.RateFilter) ([]models.Bond, error)
	CashFlow(ctx context.Context, id int64) ([]models.CashFlowEntry, error)
}

// BondCalculationRepository runs the per-bond calculations. Optional rates
// are omitted from the request when nil.
type BondCalculationRepository interface {
	CashFlow(ctx context.Context, id int64, tasaDescuento *float64) ([]models.CashFlowEntry, error)
	Metrics(ctx context.Context, id int64, tasaMercado, cambioPuntos *float64) (*models.DuracionConvexidad, error)
	Price(ctx context.Context, id int64, tasaMercado *float64) (*models.PrecioMercado, error)
	TCEA(ctx context.Context, id int64, costosEmision float64) (*models.Rendimiento, error)
	TREA(ctx context.Context, id int64, precioCompra float64) (*models.Rendimiento, error)
	MarketPrice(ctx context.Context, id int64, tasaMercado *float64) (*models.PrecioMercado, error)
}

// GeneralBondRepository administers the general bond registry.
type GeneralBondRepository interface {
	List(ctx context.Context) ([]models.GeneralBond, error)
	Create(ctx context.Context, req models.CreateGeneralBondRequest) (*models.GeneralBond, error)
	Get(ctx context.Context, id string) (*models.GeneralBond, error)
	Update(ctx context.Context, id string, req models.CreateGeneralBondRequest) (*models.GeneralBond, error)
	Delete(ctx context.Context, id string) error
	// Search matches bonds by name.
	Search(ctx context.Context, nombre string) ([]models.GeneralBond, error)
	ByCurrency(ctx context.Context, moneda string) ([]models.GeneralBond, error)
}

// --- Investor calculations ---

// CalculationRepository stores and runs investor calculations.
type CalculationRepository interface {
	List(ctx context.Context) ([]models.CalculoInversion, error)
	Create(ctx context.Context, req models.CreateCalculoRequest) (*models.CalculoInversion, error)
	Get(ctx context.Context, id int64) (*models.CalculoInversion, error)
	Delete(ctx context.Context, id int64) error

	TREAEnriched(ctx context.Context, bonoID int64, precioCompra float64) (*models.CalculoInversion, error)
	TCEAEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error)
	DurationEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error)
	ConvexityEnriched(ctx context.Context, bonoID int64) (*models.CalculoInversion, error)
	MaxPriceEnriched(ctx context.Context, bonoID int64, tasaEsperada float64) (*models.CalculoInversion, error)
	FullAnalysis(ctx context.Context, bonoID int64, tasaEsperada float64, precioCompra *float64) (*models.CalculoInversion, error)
	Standalone(ctx context.Context, req models.StandaloneCalculoRequest) (*models.CalculoInversion, error)

	// InvestorCashFlow returns the investor cash-flow payload unmodified.
	InvestorCashFlow(ctx context.Context, bonoID int64, precioCompra float64) (json.RawMessage, error)
}

// --- User management ---

// UserManagementRepository lists users.
type UserManagementRepository interface {
	Users(ctx context.Context) ([]models.UserResource, error)
	User(ctx context.Context, id int64) (*models.UserResource, error)
}

// RoleManagementRepository lists roles.
type RoleManagementRepository interface {
	Roles(ctx context.Context) ([]models.RoleResource, error)
}

// ProfileManagementRepository manages user profiles.
type ProfileManagementRepository interface {
	Profiles(ctx context.Context) ([]models.ProfileResource, error)
	Profile(ctx context.Context, id int64) (*models.ProfileResource, error)
	CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.ProfileResource, error)
	AssignProfile(ctx context.Context, userID int64, req models.CreateProfileRequest) (*models.ProfileResource, error)
}

// --- Backend ---

// HealthChecker reports whether the backend answers.
type HealthChecker interface {
	Health(ctx context.Context) (*models.BackendHealth, error)
}
