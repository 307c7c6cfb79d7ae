package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold returns s case-folded for caseless matching
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, term string) bool {
	return strings.Contains(fold(s), term)
}

// FilterSimulations returns the simulations whose title or description
// contains term, ignoring case. An empty term matches everything.
func FilterSimulations(sims []Simulation, term string) []Simulation {
	term = fold(strings.TrimSpace(term))
	if term == "" {
		return sims
	}

	matched := make([]Simulation, 0, len(sims))
	for _, s := range sims {
		if containsFold(s.Title, term) || containsFold(s.Description, term) {
			matched = append(matched, s)
		}
	}
	return matched
}

// FilterCourses returns the courses whose title or description contains
// term, ignoring case. An empty term matches everything.
func FilterCourses(courses []Course, term string) []Course {
	term = fold(strings.TrimSpace(term))
	if term == "" {
		return courses
	}

	matched := make([]Course, 0, len(courses))
	for _, c := range courses {
		if containsFold(c.Title, term) || containsFold(c.Description, term) {
			matched = append(matched, c)
		}
	}
	return matched
}

// FindCourse returns the first course whose title contains title,
// ignoring case. A blank title finds nothing.
func FindCourse(courses []Course, title string) (Course, bool) {
	title = fold(strings.TrimSpace(title))
	if title == "" {
		return Course{}, false
	}
	for _, c := range courses {
		if containsFold(c.Title, title) {
			return c, true
		}
	}
	return Course{}, false
}

// FindSimulation returns the simulation with the given id
func FindSimulation(sims []Simulation, id ID) (Simulation, bool) {
	for _, s := range sims {
		if s.ID == id {
			return s, true
		}
	}
	return Simulation{}, false
}
