package chat

import (
	"fmt"
	"strings"

	"github.com/softsite/advisor-backend/internal/entity"
)

const contextHeader = "*** OFFICIAL DOCUMENTATION CONTEXT ***"

const citeInstruction = "When you use information from the documentation context above, " +
	"mention the source file it came from. If the context does not cover the question, " +
	"say so instead of guessing."

// buildSystemInstruction combines the program policy with the retrieved
// documentation. When no chunks matched, the documentation block is left
// out entirely so the model does not cite an empty context.
func buildSystemInstruction(policy string, chunks []entity.RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString(policy)

	if len(chunks) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\n")
	sb.WriteString(contextHeader)
	for _, chunk := range chunks {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "[Source: %s]\n%s", chunk.Metadata.Filename, chunk.Content)
	}
	sb.WriteString("\n\n")
	sb.WriteString(citeInstruction)

	return sb.String()
}
