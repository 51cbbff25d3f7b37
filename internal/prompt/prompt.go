package prompt

import (
	"fmt"
	"strings"

	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/selection"
)

const basePrompt = "Create a photorealistic, artistic image of a young Vietnamese woman. "

const closing = "The final image should be beautiful, elegant, and of high artistic quality, retaining the original person's facial features."

type clause struct {
	group    string
	sentinel string
	render   func(o catalog.Option) string
}

// Clause order is fixed; it is also the order the attributes read in the prompt.
var clauses = []clause{
	{
		group: catalog.GroupLighting,
		render: func(o catalog.Option) string {
			return fmt.Sprintf("The lighting and color style is '%s'. Description: %s. ", o.Title, o.Description)
		},
	},
	{
		group: catalog.GroupLayout,
		render: func(o catalog.Option) string {
			return fmt.Sprintf("The composition is a %s shot. ", strings.ToLower(o.Title))
		},
	},
	{
		group:    catalog.GroupCostume,
		sentinel: catalog.OriginalCostume,
		render: func(o catalog.Option) string {
			return fmt.Sprintf("She is wearing '%s'. ", o.Title)
		},
	},
	{
		group:    catalog.GroupBackground,
		sentinel: catalog.OriginalBackground,
		render: func(o catalog.Option) string {
			return fmt.Sprintf("The background is '%s'. ", o.Title)
		},
	},
	{
		group:    catalog.GroupEmotion,
		sentinel: catalog.OriginalEmotion,
		render: func(o catalog.Option) string {
			return fmt.Sprintf("Her expression is '%s'. ", o.Title)
		},
	},
}

// Base renders the pose-independent part of the prompt. Groups without a
// selection or without a configuration entry are skipped.
func Base(idx *catalog.Index, st selection.State) string {
	var b strings.Builder
	b.Grow(512)
	b.WriteString(basePrompt)

	for _, c := range clauses {
		id, ok := st.Single(c.group)
		if !ok || (c.sentinel != "" && id == c.sentinel) {
			continue
		}
		o, ok := idx.Option(c.group, id)
		if !ok {
			continue
		}
		b.WriteString(c.render(o))
	}
	return b.String()
}

// WithPose appends the pose clause and the closing instruction to a base.
func WithPose(base string, pose catalog.Option) string {
	return base + fmt.Sprintf("She is in the pose: '%s' (%s). ", pose.Title, pose.Description) + closing
}

// Assemble builds the full prompt for one pose.
func Assemble(idx *catalog.Index, st selection.State, pose catalog.Option) string {
	return WithPose(Base(idx, st), pose)
}
