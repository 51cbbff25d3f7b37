package catalog

type GroupKind string

const (
	KindCard GroupKind = "card"
	KindPill GroupKind = "pill"
	KindPose GroupKind = "pose"
)

type Option struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

type OptionGroup struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Kind          GroupKind `json:"type"`
	AllowMultiple bool      `json:"allowMultiple"`
	Options       []Option  `json:"options"`
	ShowSelectAll bool      `json:"showSelectAll,omitempty"`
}

type Section struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Groups      []OptionGroup `json:"groups"`
}

// OptionIDs returns the group's option ids in declaration order.
func (g OptionGroup) OptionIDs() []string {
	out := make([]string, 0, len(g.Options))
	for _, o := range g.Options {
		out = append(out, o.ID)
	}
	return out
}
