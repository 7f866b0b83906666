package render

import (
	"context"

	"github.com/matzehuels/umlsvg/pkg/scene"
)

// Renderer writes a finished scene in one output format.
type Renderer interface {
	Format() Format
	Render(ctx context.Context, s *scene.Scene) ([]byte, error)
}
