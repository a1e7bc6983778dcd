// ABOUTME: Renders a bridge's endpoint summary as HTML documentation
// ABOUTME: Converts the generated markdown with goldmark

package admin

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/restbridge/bridge-gateway/internal/openapi"
)

// docsPage wraps rendered documentation in a minimal standalone page.
const docsPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
code { background: #f2f2f2; padding: 0.1rem 0.3rem; border-radius: 3px; }
</style>
</head>
<body>
%s</body>
</html>
`

// handleBridgeDocs serves human-readable endpoint documentation.
func (s *Server) handleBridgeDocs(w http.ResponseWriter, r *http.Request) {
	bridge, err := s.store.GetBridge(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}

	markdown := openapi.EndpointsSummary(bridge)

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &htmlBuf); err != nil {
		s.logger.Error("failed to convert markdown", "bridge_id", bridge.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to render documentation")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, docsPage, bridge.Name, htmlBuf.String())
}
