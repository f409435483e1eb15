package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flatground/skateline/internal/database/postgres"
	"github.com/flatground/skateline/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Match   repository.Match
	Dispute repository.Dispute
	Profile repository.Profile
}

// InitializeRepositories creates all repository implementations.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Match:   postgres.NewMatchRepository(dbPool),
		Dispute: postgres.NewDisputeRepository(dbPool),
		Profile: postgres.NewProfileRepository(dbPool),
	}
}
