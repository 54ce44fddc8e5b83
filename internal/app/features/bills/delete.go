// internal/app/features/bills/delete.go
package bills

import (
	"context"
	"net/http"

	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/bills/{billID}/delete – managers                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionDeleteBill)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	if err := h.Bills.Delete(ctx, bill.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "db delete bill", err, "A database error occurred.", billsURL(sc))
		return
	}

	// The stored document is kept: bills can be deleted by mistake and the
	// storage key is recorded in the audit detail for recovery.
	h.AuditLog.Admin(ctx, r, "bill_deleted", sc.UserID, primitive.NilObjectID, sc.Session.ID, map[string]string{
		"bill_number":  bill.BillNumber,
		"document_key": bill.DocumentKey,
	})
	h.Log.Info("bill deleted",
		zap.String("session_id", sc.Session.ID.Hex()),
		zap.String("bill_id", bill.ID.Hex()),
		zap.String("bill_number", bill.BillNumber))

	http.Redirect(w, r, billsURL(sc), http.StatusSeeOther)
}
