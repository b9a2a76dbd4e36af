package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/garnizeh/bidtrack/internal/importer"
)

// maxImportSize bounds an import payload.
const maxImportSize = 10 << 20

type ImportHandler struct {
	importer *importer.Importer
}

func NewImportHandler(im *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: im}
}

func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	res, err := h.importer.Import(r.Context(), payload)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidPayload) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("import", "err", err)
		http.Error(w, "import failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, res, http.StatusOK)
}
