package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
	"github.com/kevinaaaquil/book-inventory/backend/middleware"
	"github.com/kevinaaaquil/book-inventory/backend/service"
)

// ExportHandler serves POST /books/export. Exporter is nil when no bucket is
// configured.
type ExportHandler struct {
	Exporter *service.Exporter
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.Exporter == nil {
		fail(w, r, apperr.New(apperr.Unavailable, "Export storage is not configured"))
		return
	}
	res, err := h.Exporter.Export(r.Context())
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			fail(w, r, err)
			return
		}
		logFor(r).WithError(err).Error("inventory export upload failed")
		writeJSON(w, http.StatusBadGateway, envelope{Message: "Export upload failed"})
		return
	}
	caller, _ := middleware.IdentityFromContext(r.Context())
	logFor(r).WithFields(logrus.Fields{"key": res.Key, "count": res.Count, "user": caller.Username}).Info("inventory exported")
	respond(w, http.StatusOK, res)
}
