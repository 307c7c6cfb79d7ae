package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
)

// FixturePattern matches the fixture files a File source loads
const FixturePattern = "**/*.{yaml,yml,toml}"

// Catalog is the layout of one fixture file
type Catalog struct {
	Courses     []catalog.Course     `yaml:"courses" toml:"courses"`
	Simulations []catalog.Simulation `yaml:"simulations" toml:"simulations"`
}

// File serves catalog records loaded from fixture files
type File struct {
	fsys fs.FS

	mu          sync.RWMutex
	courses     []catalog.Course
	simulations []catalog.Simulation
}

// NewFile loads every fixture under dir
func NewFile(dir string) (*File, error) {
	return NewFileFS(os.DirFS(dir))
}

// NewFileFS loads every fixture in fsys
func NewFileFS(fsys fs.FS) (*File, error) {
	f := &File{fsys: fsys}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the fixtures. On error the previous records are kept.
func (f *File) Reload() error {
	names, err := doublestar.Glob(f.fsys, FixturePattern)
	if err != nil {
		return fmt.Errorf("glob fixtures: %w", err)
	}
	sort.Strings(names)

	var merged Catalog
	courseIDs := make(map[catalog.ID]string)
	simIDs := make(map[catalog.ID]string)

	for _, name := range names {
		cat, err := f.load(name)
		if err != nil {
			return err
		}
		for _, c := range cat.Courses {
			if prev, ok := courseIDs[c.ID]; ok {
				return fmt.Errorf("fixture %s: course %q already defined in %s", name, c.ID, prev)
			}
			courseIDs[c.ID] = name
			merged.Courses = append(merged.Courses, c)
		}
		for _, s := range cat.Simulations {
			if prev, ok := simIDs[s.ID]; ok {
				return fmt.Errorf("fixture %s: simulation %q already defined in %s", name, s.ID, prev)
			}
			simIDs[s.ID] = name
			merged.Simulations = append(merged.Simulations, s)
		}
	}

	f.mu.Lock()
	f.courses = merged.Courses
	f.simulations = merged.Simulations
	f.mu.Unlock()
	return nil
}

func (f *File) load(name string) (Catalog, error) {
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return Catalog{}, fmt.Errorf("read fixture %s: %w", name, err)
	}

	var cat Catalog
	switch path.Ext(name) {
	case ".toml":
		err = toml.Unmarshal(data, &cat)
	default:
		err = yaml.Unmarshal(data, &cat)
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return cat, nil
}

// ListCourses returns every course
func (f *File) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]catalog.Course(nil), f.courses...), nil
}

// GetCourse returns the course with the given id
func (f *File) GetCourse(ctx context.Context, id catalog.ID) (catalog.Course, error) {
	courses, err := f.ListCourses(ctx)
	if err != nil {
		return catalog.Course{}, err
	}
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return catalog.Course{}, fmt.Errorf("%w: course %s", ErrNotFound, id)
}

// ListSimulations returns every simulation
func (f *File) ListSimulations(ctx context.Context) ([]catalog.Simulation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]catalog.Simulation(nil), f.simulations...), nil
}

// GetSimulation returns the simulation with the given id
func (f *File) GetSimulation(ctx context.Context, id catalog.ID) (catalog.Simulation, error) {
	sims, err := f.ListSimulations(ctx)
	if err != nil {
		return catalog.Simulation{}, err
	}
	if sim, ok := catalog.FindSimulation(sims, id); ok {
		return sim, nil
	}
	return catalog.Simulation{}, fmt.Errorf("%w: simulation %s", ErrNotFound, id)
}
