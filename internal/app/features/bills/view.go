// internal/app/features/bills/view.go
package bills

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type viewData struct {
	viewdata.BaseVM
	Session    *models.LegislativeSession
	Bill       *models.Bill
	Assignee   string
	Categories []models.SessionCategory
	Hearings   []models.Hearing

	CanEdit   bool
	CanUpload bool
	CanDelete bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills/{billID}                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	var assignee string
	if bill.AssignedTo != nil {
		if u, err := h.Users.GetByID(ctx, *bill.AssignedTo); err == nil {
			assignee = u.FullName
		}
	}

	all, err := h.Categories.ListBySession(ctx, sc.Session.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list categories", err, "A database error occurred.", billsURL(sc))
		return
	}
	inBill := make(map[primitive.ObjectID]bool, len(bill.CategoryIDs))
	for _, cid := range bill.CategoryIDs {
		inBill[cid] = true
	}
	var categories []models.SessionCategory
	for _, c := range all {
		if inBill[c.ID] {
			categories = append(categories, c)
		}
	}

	hearings, err := h.Hearings.ListByBill(ctx, bill.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db list bill hearings", err, "A database error occurred.", billsURL(sc))
		return
	}

	writable := !sc.Session.Archived()
	templates.Render(w, r, "bill_view", viewData{
		BaseVM:     viewdata.NewBaseVM(r, bill.BillNumber+" - "+bill.Title, billsURL(sc)),
		Session:    sc.Session,
		Bill:       bill,
		Assignee:   assignee,
		Categories: categories,
		Hearings:   hearings,
		CanEdit:    writable && sc.Role.Can(authz.ActionUpdateBill),
		CanUpload:  writable && sc.Role.Can(authz.ActionUploadBillDocument),
		CanDelete:  writable && sc.Role.Can(authz.ActionDeleteBill),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills/{billID}/download                           |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDownload serves the bill document directly (local storage) or
// redirects to a signed URL (S3).
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.Require(w, r, ctx, authz.ActionViewSession)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if !bill.HasDocument() {
		h.ErrLog.LogNotFound(w, r, "bill has no document", nil, "This bill has no uploaded document.", billsURL(sc)+"/"+bill.ID.Hex())
		return
	}

	filename := bill.DocumentName
	if filename == "" {
		filename = "download"
	}
	contentDisposition := `attachment; filename="` + filename + `"`

	// Prevent browser caching of downloads (important when files are replaced).
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(bill.DocumentKey)
		if err != nil {
			h.Log.Error("resolve local document path",
				zap.Error(err),
				zap.String("key", bill.DocumentKey))
			h.ErrLog.LogServerError(w, r, "resolve local document path", err, "Failed to locate the document.", billsURL(sc))
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, bill.DocumentKey, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("generate signed document URL",
			zap.Error(err),
			zap.String("key", bill.DocumentKey))
		h.ErrLog.LogServerError(w, r, "generate signed document URL", err, "Failed to generate the download link.", billsURL(sc))
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
