package report

import (
	"encoding/json"
	"fmt"
	"io"
)

func writeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}

	return nil
}
