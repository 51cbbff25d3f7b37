package selection

import (
	"encoding/json"
	"errors"
	"fmt"

	"photo-style-studio/internal/catalog"
)

var (
	ErrUnknownGroup  = errors.New("unknown option group")
	ErrUnknownOption = errors.New("unknown option")
	ErrNotMultiple   = errors.New("group does not allow multiple selections")
	ErrShape         = errors.New("selection shape does not match group")
)

// State maps a group id to its selection. Single-choice groups hold one option
// id ("" means nothing selected), multi-choice groups an ordered set.
type State struct {
	single map[string]string
	multi  map[string][]string
}

// Defaults builds the initial state from configuration defaults.
func Defaults(idx *catalog.Index) State {
	st := State{
		single: make(map[string]string),
		multi:  make(map[string][]string),
	}
	for _, g := range idx.Groups() {
		if g.AllowMultiple {
			st.multi[g.ID] = []string{}
			continue
		}
		st.single[g.ID] = idx.Default(g.ID)
	}
	return st
}

func (s State) Clone() State {
	out := State{
		single: make(map[string]string, len(s.single)),
		multi:  make(map[string][]string, len(s.multi)),
	}
	for k, v := range s.single {
		out.single[k] = v
	}
	for k, v := range s.multi {
		out.multi[k] = append([]string{}, v...)
	}
	return out
}

// Single returns the selected option of a single-choice group.
func (s State) Single(groupID string) (string, bool) {
	v, ok := s.single[groupID]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Multi returns a copy of the selected options of a multi-choice group.
func (s State) Multi(groupID string) []string {
	return append([]string{}, s.multi[groupID]...)
}

func (s State) IsSelected(groupID, optionID string) bool {
	if v, ok := s.single[groupID]; ok {
		return v != "" && v == optionID
	}
	return indexOf(s.multi[groupID], optionID) >= 0
}

// Toggle applies a click on an option. Multi-choice groups flip membership;
// single-choice groups replace the value and never deselect.
func (s *State) Toggle(idx *catalog.Index, groupID, optionID string) error {
	g, ok := idx.Group(groupID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
	}
	if _, ok := idx.Option(groupID, optionID); !ok {
		return fmt.Errorf("%w: %q in group %q", ErrUnknownOption, optionID, groupID)
	}
	s.ensure()

	if !g.AllowMultiple {
		s.single[groupID] = optionID
		return nil
	}

	current := s.multi[groupID]
	if i := indexOf(current, optionID); i >= 0 {
		next := make([]string, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		s.multi[groupID] = next
		return nil
	}
	s.multi[groupID] = append(append([]string{}, current...), optionID)
	return nil
}

// SelectAll selects every option of a multi-choice group in declaration order.
func (s *State) SelectAll(idx *catalog.Index, groupID string) error {
	g, err := multiGroup(idx, groupID)
	if err != nil {
		return err
	}
	s.ensure()
	s.multi[groupID] = g.OptionIDs()
	return nil
}

func (s *State) DeselectAll(idx *catalog.Index, groupID string) error {
	if _, err := multiGroup(idx, groupID); err != nil {
		return err
	}
	s.ensure()
	s.multi[groupID] = []string{}
	return nil
}

// PoseIDs unions the pose groups, props first, keeping selection order.
func (s State) PoseIDs(idx *catalog.Index) []string {
	var out []string
	for _, g := range idx.PoseGroupIDs() {
		out = append(out, s.multi[g]...)
	}
	return out
}

func (s State) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.single)+len(s.multi))
	for k, v := range s.single {
		if v == "" {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	for k, v := range s.multi {
		out[k] = append([]string{}, v...)
	}
	return json.Marshal(out)
}

// Parse reads a JSON selection map on top of the configuration defaults.
// Groups missing from raw keep their default.
func Parse(idx *catalog.Index, raw map[string]json.RawMessage) (State, error) {
	st := Defaults(idx)
	for groupID, value := range raw {
		g, ok := idx.Group(groupID)
		if !ok {
			return State{}, fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
		}

		if g.AllowMultiple {
			var ids []string
			if err := json.Unmarshal(value, &ids); err != nil {
				return State{}, fmt.Errorf("%w: %q expects a list", ErrShape, groupID)
			}
			set := make([]string, 0, len(ids))
			for _, id := range ids {
				if _, ok := idx.Option(groupID, id); !ok {
					return State{}, fmt.Errorf("%w: %q in group %q", ErrUnknownOption, id, groupID)
				}
				if indexOf(set, id) < 0 {
					set = append(set, id)
				}
			}
			st.multi[groupID] = set
			continue
		}

		var id *string
		if err := json.Unmarshal(value, &id); err != nil {
			return State{}, fmt.Errorf("%w: %q expects a single id", ErrShape, groupID)
		}
		if id == nil || *id == "" {
			st.single[groupID] = ""
			continue
		}
		if _, ok := idx.Option(groupID, *id); !ok {
			return State{}, fmt.Errorf("%w: %q in group %q", ErrUnknownOption, *id, groupID)
		}
		st.single[groupID] = *id
	}
	return st, nil
}

func (s *State) ensure() {
	if s.single == nil {
		s.single = make(map[string]string)
	}
	if s.multi == nil {
		s.multi = make(map[string][]string)
	}
}

func multiGroup(idx *catalog.Index, groupID string) (catalog.OptionGroup, error) {
	g, ok := idx.Group(groupID)
	if !ok {
		return catalog.OptionGroup{}, fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
	}
	if !g.AllowMultiple {
		return catalog.OptionGroup{}, fmt.Errorf("%w: %q", ErrNotMultiple, groupID)
	}
	return g, nil
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
