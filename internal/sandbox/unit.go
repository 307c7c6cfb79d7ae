package sandbox

// Unit is an untrusted simulation payload. Any fragment may be empty.
type Unit struct {
	ID     string
	Title  string // plain text, never interpreted as markup
	Markup string
	Style  string
	Script string
}

// IsEmpty reports whether the unit carries no fragments at all
func (u Unit) IsEmpty() bool {
	return u.Markup == "" && u.Style == "" && u.Script == ""
}

// Document is a composed, self-contained HTML document.
// It is immutable; a changed unit produces a new Document.
type Document struct {
	unitID string
	title  string
	html   string
}

// UnitID returns the id of the unit the document was composed from
func (d Document) UnitID() string { return d.unitID }

// Title returns the unit title (plain text)
func (d Document) Title() string { return d.title }

// HTML returns the document source
func (d Document) HTML() string { return d.html }

// Bytes returns the document source as bytes
func (d Document) Bytes() []byte { return []byte(d.html) }

// IsZero reports whether d was never composed
func (d Document) IsZero() bool { return d.html == "" }

func (d Document) String() string { return d.html }
