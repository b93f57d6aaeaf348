package project

// Project is a user workspace document: a title, ordered pages, and layout
// metadata for the summary view.
type Project struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Pages           []Page           `json:"pages,omitempty"`
	SummarySections []SummarySection `json:"summarySections,omitempty"`
	Blocks          map[string]Block `json:"blocks,omitempty"` // keyed by logical region
	CreatedAt       int64            `json:"createdAt"`
}

// Page is one page of a project, with its own summary and block layout.
type Page struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	SummarySections []SummarySection `json:"summarySections,omitempty"`
	Blocks          map[string]Block `json:"blocks,omitempty"`
}

// SummarySection is a titled rich-text region on a project summary.
type SummarySection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// Block is layout metadata for one logical region of a project view.
type Block struct {
	Kind      string `json:"kind,omitempty"`
	Content   string `json:"content,omitempty"`
	Collapsed bool   `json:"collapsed,omitempty"`
}

// Patch is a partial project update. Nil fields are left untouched.
type Patch struct {
	Title           *string           `json:"title,omitempty"`
	Pages           *[]Page           `json:"pages,omitempty"`
	SummarySections *[]SummarySection `json:"summarySections,omitempty"`
	Blocks          *map[string]Block `json:"blocks,omitempty"`
}

// persistedState is the JSON shape written under the projects blob key.
type persistedState struct {
	Projects []Project `json:"projects"`
}
