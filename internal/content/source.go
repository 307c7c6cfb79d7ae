package content

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
)

var (
	// ErrNotFound is returned when the backend has no record with the requested id.
	ErrNotFound = errors.New("content not found")
	// ErrUnavailable is returned when the backend cannot be reached or answers with a failure.
	ErrUnavailable = errors.New("content backend unavailable")
	// ErrBadEnvelope is returned when a response body is not a {"data": ...} envelope.
	ErrBadEnvelope = errors.New("malformed content envelope")
)

// Source provides course and simulation records
type Source interface {
	ListCourses(ctx context.Context) ([]catalog.Course, error)
	GetCourse(ctx context.Context, id catalog.ID) (catalog.Course, error)
	ListSimulations(ctx context.Context) ([]catalog.Simulation, error)
	GetSimulation(ctx context.Context, id catalog.ID) (catalog.Simulation, error)
}
