// Package render maps content blocks to Markdown fragments.
package render

import (
	"fmt"
	"strings"

	"github.com/starford/notedown/internal/models"
)

// Block renders one content block to its Markdown fragment. It is a pure
// function and total over the block variants: unsupported kinds and hosted
// images render to the empty string, never an error.
func Block(b models.Block) string {
	switch b.Kind {
	case models.BlockParagraph:
		return b.Text + "\n\n"
	case models.BlockHeading1:
		return "# " + b.Text + "\n\n"
	case models.BlockHeading2:
		return "## " + b.Text + "\n\n"
	case models.BlockHeading3:
		return "### " + b.Text + "\n\n"
	case models.BlockBulleted:
		return "- " + b.Text + "\n"
	case models.BlockNumbered:
		// Every item is emitted as "1."; ordinal renumbering is left to the
		// Markdown renderer consuming the output.
		return "1. " + b.Text + "\n"
	case models.BlockQuote:
		return "> " + b.Text + "\n\n"
	case models.BlockCode:
		return fmt.Sprintf("```%s\n%s\n```\n\n", b.Language, b.Text)
	case models.BlockImage:
		if b.ImageKind == models.ImageExternal {
			return fmt.Sprintf("![Image](%s)\n\n", b.ImageURL)
		}
		// Hosted images are handled by the image localization pass.
		return ""
	default:
		return ""
	}
}

// Blocks renders a page body by concatenating the fragments of every block
// in sequence order.
func Blocks(blocks []models.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(Block(b))
	}
	return sb.String()
}
