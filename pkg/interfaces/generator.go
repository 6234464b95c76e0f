package interfaces

import (
	"context"

	"github.com/inferloop/tabcert/pkg/models"
)

// Generator defines the interface for synthetic tabular data generators.
// The evaluation engine treats generators as a black-box capability and
// never depends on a specific generator's internals.
type Generator interface {
	// GetType returns the generator type
	GetType() string

	// GetName returns a human-readable name for the generator
	GetName() string

	// GetDescription returns a description of the generator
	GetDescription() string

	// Fit trains the generator on a real reference frame
	Fit(ctx context.Context, real *models.Frame) error

	// Sample draws n synthetic rows from the fitted model
	Sample(ctx context.Context, n int) (*models.Frame, error)

	// IsFitted returns true once Fit has completed successfully
	IsFitted() bool

	// Close cleans up resources
	Close() error
}
