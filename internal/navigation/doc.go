// Package navigation builds the sidebar tree of the course pages.
//
// Tree state (expanded courses, expanded modules, selected lesson) is an
// immutable value parsed from the query string. Each link in the built tree
// carries the state it leads to, so the sidebar works without client script.
package navigation
