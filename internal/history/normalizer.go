// Package history bridges the stored canonical message shape and the
// Gemini wire representation. Stored history is a strict subset of what
// the API returns: role plus text parts, nothing else.
package history

import (
	"fmt"

	"gemini-chat-be/internal/entity"
	"gemini-chat-be/pkg/gemini"
)

// ErrUnexpectedRole is returned when the upstream hands back a role outside
// the closed user/model set. Unknown roles are surfaced, never coerced.
var ErrUnexpectedRole = fmt.Errorf("unexpected role in model history")

// ToContents converts stored history into the wire shape. The result is a
// deep, structurally independent copy: the upstream call may mutate it
// freely without aliasing back into the stored record.
func ToContents(stored []entity.Message) []*gemini.Content {
	contents := make([]*gemini.Content, 0, len(stored))
	for _, msg := range stored {
		parts := make([]*gemini.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			parts = append(parts, &gemini.Part{Text: p.Text})
		}
		contents = append(contents, &gemini.Content{
			Parts: parts,
			Role:  string(msg.Role),
		})
	}
	return contents
}

// FromContents projects a wire history onto the stored shape, keeping only
// role and text parts in order. Non-text parts come through as empty text
// and are dropped; a message whose parts all vanish is dropped entirely so
// persisted messages always carry at least one part.
func FromContents(contents []*gemini.Content) ([]entity.Message, error) {
	stored := make([]entity.Message, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		role := entity.Role(c.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedRole, c.Role)
		}
		parts := make([]entity.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p == nil || p.Text == "" {
				continue
			}
			parts = append(parts, entity.Part{Text: p.Text})
		}
		if len(parts) == 0 {
			continue
		}
		stored = append(stored, entity.Message{
			Role:  role,
			Parts: parts,
		})
	}
	return stored, nil
}
