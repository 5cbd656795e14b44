package models

// FileIssues pairs a file path with its findings.
type FileIssues struct {
	Path   string  `json:"file_path"`
	Issues []Issue `json:"issues"`
}

// PerFileIssues maps file paths to issues, preserving the order in which
// paths were first seen. A path that was never added reads as empty.
type PerFileIssues struct {
	order  []string
	issues map[string][]Issue
}

// NewPerFileIssues returns an empty map.
func NewPerFileIssues() *PerFileIssues {
	return &PerFileIssues{issues: make(map[string][]Issue)}
}

// Ensure registers path with no issues if it is not already present.
func (p *PerFileIssues) Ensure(path string) {
	if _, ok := p.issues[path]; ok {
		return
	}
	p.order = append(p.order, path)
	p.issues[path] = []Issue{}
}

// Append adds issues to path, registering it first if needed.
func (p *PerFileIssues) Append(path string, issues ...Issue) {
	p.Ensure(path)
	p.issues[path] = append(p.issues[path], issues...)
}

// Get returns the issues recorded for path.
func (p *PerFileIssues) Get(path string) []Issue {
	if p == nil {
		return nil
	}
	return p.issues[path]
}

// Has reports whether path has been registered.
func (p *PerFileIssues) Has(path string) bool {
	if p == nil {
		return false
	}
	_, ok := p.issues[path]
	return ok
}

// Paths returns the registered paths in discovery order.
func (p *PerFileIssues) Paths() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of registered paths.
func (p *PerFileIssues) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// Count returns the total number of issues across all files.
func (p *PerFileIssues) Count() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, issues := range p.issues {
		n += len(issues)
	}
	return n
}

// Files returns every entry in discovery order, including empty ones.
func (p *PerFileIssues) Files() []FileIssues {
	if p == nil {
		return nil
	}
	out := make([]FileIssues, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, FileIssues{Path: path, Issues: p.issues[path]})
	}
	return out
}
