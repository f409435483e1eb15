package match

import (
	"github.com/flatground/skateline/internal/repository"
)

// Repository is a local interface for match repository operations.
// It embeds repository.Match to enable mock generation in this package.
type Repository interface {
	repository.Match
}
