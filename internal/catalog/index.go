package catalog

import (
	"fmt"
	"sync"
)

// Index is the precomputed lookup over a configuration. It is immutable once
// built and safe for concurrent use.
type Index struct {
	sections []Section
	groups   []OptionGroup
	byGroup  map[string]groupEntry
	poses    []string
}

type groupEntry struct {
	group   OptionGroup
	options map[string]Option
}

func NewIndex(secs []Section) (*Index, error) {
	idx := &Index{
		byGroup: make(map[string]groupEntry),
	}

	for _, s := range secs {
		s = cloneSection(s)
		idx.sections = append(idx.sections, s)

		for _, g := range s.Groups {
			if g.ID == "" {
				return nil, fmt.Errorf("section %q: group with empty id", s.ID)
			}
			if _, dup := idx.byGroup[g.ID]; dup {
				return nil, fmt.Errorf("duplicate group id %q", g.ID)
			}

			options := make(map[string]Option, len(g.Options))
			defaults := 0
			for _, o := range g.Options {
				if _, dup := options[o.ID]; dup {
					return nil, fmt.Errorf("group %q: duplicate option id %q", g.ID, o.ID)
				}
				options[o.ID] = o
				if o.Default {
					defaults++
				}
			}
			if !g.AllowMultiple && defaults > 1 {
				return nil, fmt.Errorf("group %q: %d default options, want at most one", g.ID, defaults)
			}

			idx.byGroup[g.ID] = groupEntry{group: g, options: options}
			idx.groups = append(idx.groups, g)
		}
	}

	for _, id := range PoseGroups {
		if _, ok := idx.byGroup[id]; ok {
			idx.poses = append(idx.poses, id)
		}
	}

	return idx, nil
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
)

// MustDefaultIndex returns the index over the built-in sections.
func MustDefaultIndex() *Index {
	defaultOnce.Do(func() {
		idx, err := NewIndex(sections)
		if err != nil {
			panic(err)
		}
		defaultIndex = idx
	})
	return defaultIndex
}

func (i *Index) Sections() []Section {
	out := make([]Section, 0, len(i.sections))
	for _, s := range i.sections {
		out = append(out, cloneSection(s))
	}
	return out
}

// Groups returns every group in display order.
func (i *Index) Groups() []OptionGroup {
	out := make([]OptionGroup, 0, len(i.groups))
	for _, g := range i.groups {
		out = append(out, cloneGroup(g))
	}
	return out
}

func (i *Index) Group(id string) (OptionGroup, bool) {
	e, ok := i.byGroup[id]
	if !ok {
		return OptionGroup{}, false
	}
	return cloneGroup(e.group), true
}

func (i *Index) Option(groupID, optionID string) (Option, bool) {
	if optionID == "" {
		return Option{}, false
	}
	e, ok := i.byGroup[groupID]
	if !ok {
		return Option{}, false
	}
	o, ok := e.options[optionID]
	return o, ok
}

// Default returns the default option id of a single-choice group, or "".
func (i *Index) Default(groupID string) string {
	e, ok := i.byGroup[groupID]
	if !ok || e.group.AllowMultiple {
		return ""
	}
	for _, o := range e.group.Options {
		if o.Default {
			return o.ID
		}
	}
	return ""
}

// PoseGroupIDs returns the configured pose groups in union order.
func (i *Index) PoseGroupIDs() []string {
	return append([]string(nil), i.poses...)
}

// PoseOption finds a pose by id across the pose groups, first match wins.
func (i *Index) PoseOption(id string) (Option, bool) {
	for _, g := range i.poses {
		if o, ok := i.Option(g, id); ok {
			return o, true
		}
	}
	return Option{}, false
}
