package domain

import "strings"

// DefaultFallbackFolder is the bucket used when classification cannot pick a folder.
const DefaultFallbackFolder = "Unsorted"

// DefaultOnboardingFolders are offered to new users during onboarding.
var DefaultOnboardingFolders = []string{"Ideas", "Todo", "School", "Memories", "Work", "Family"}

// Constraint is the closed set of folder names a classification call may choose from.
// The fallback name is always a member and names are unique.
type Constraint struct {
	names    []string
	members  map[string]struct{}
	fallback string
}

// NewConstraint builds a constraint from folder names. Blank and duplicate names are
// dropped and the fallback is appended when missing. An empty fallback means
// DefaultFallbackFolder.
func NewConstraint(names []string, fallback string) Constraint {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = DefaultFallbackFolder
	}

	c := Constraint{
		names:    make([]string, 0, len(names)+1),
		members:  make(map[string]struct{}, len(names)+1),
		fallback: fallback,
	}
	for _, name := range names {
		c.add(strings.TrimSpace(name))
	}
	c.add(fallback)
	return c
}

// ConstraintFromFolders builds a constraint from a user's folders.
func ConstraintFromFolders(folders []Folder, fallback string) Constraint {
	names := make([]string, 0, len(folders))
	for _, f := range folders {
		names = append(names, f.Name)
	}
	return NewConstraint(names, fallback)
}

func (c *Constraint) add(name string) {
	if name == "" {
		return
	}
	if _, ok := c.members[name]; ok {
		return
	}
	c.members[name] = struct{}{}
	c.names = append(c.names, name)
}

// Contains reports case-sensitive membership.
func (c Constraint) Contains(name string) bool {
	_, ok := c.members[name]
	return ok
}

// Names returns the allowed names in insertion order.
func (c Constraint) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Fallback returns the default bucket name.
func (c Constraint) Fallback() string {
	if c.fallback == "" {
		return DefaultFallbackFolder
	}
	return c.fallback
}

// Normalize returns name when it is allowed and the fallback otherwise.
func (c Constraint) Normalize(name string) string {
	name = strings.TrimSpace(name)
	if c.Contains(name) {
		return name
	}
	return c.Fallback()
}
