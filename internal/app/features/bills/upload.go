// internal/app/features/bills/upload.go
package bills

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/billtrack/internal/app/features/shared"
	"github.com/dalemusser/billtrack/internal/app/system/authz"
	"github.com/dalemusser/billtrack/internal/app/system/extract"
	"github.com/dalemusser/billtrack/internal/app/system/timeouts"
	"github.com/dalemusser/billtrack/internal/app/system/viewdata"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uploadData struct {
	viewdata.BaseVM
	Session *models.LegislativeSession
	Bill    *models.Bill
	Error   string
	MaxMB   int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sessions/{sessionID}/bills/{billID}/upload – contributors              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUploadBillDocument)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	h.renderUpload(w, r, sc, bill, "")
}

func (h *Handler) renderUpload(w http.ResponseWriter, r *http.Request, sc shared.SessionCtx, bill *models.Bill, errMsg string) {
	templates.Render(w, r, "bill_upload", uploadData{
		BaseVM:  viewdata.NewBaseVM(r, "Upload document for "+bill.BillNumber, billsURL(sc)+"/"+bill.ID.Hex()),
		Session: sc.Session,
		Bill:    bill,
		Error:   errMsg,
		MaxMB:   extract.MaxDocumentSize >> 20,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sessions/{sessionID}/bills/{billID}/upload                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUploadPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sc, ok := h.guard.RequireWritable(w, r, ctx, authz.ActionUploadBillDocument)
	if !ok {
		return
	}

	bill, ok := h.billFromPath(w, r, ctx, sc)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxDocumentSize+1024)
	if err := r.ParseMultipartForm(extract.MaxDocumentSize); err != nil {
		h.renderUpload(w, r, sc, bill, "The file is too large or the upload was malformed.")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		h.renderUpload(w, r, sc, bill, "Please choose a file to upload.")
		return
	}
	defer file.Close()

	if header.Size > extract.MaxDocumentSize {
		h.renderUpload(w, r, sc, bill, fmt.Sprintf("Documents are limited to %d MB.", extract.MaxDocumentSize>>20))
		return
	}

	// Trust the extension over the client-sent content type.
	contentType, ok2 := extract.ContentTypeForFilename(header.Filename)
	if !ok2 {
		h.renderUpload(w, r, sc, bill, "Only PDF and DOCX documents are accepted.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "read uploaded document", err, "The upload could not be read.", billsURL(sc)+"/"+bill.ID.Hex())
		return
	}

	jurisdiction, err := h.Jurisdictions.GetByID(ctx, sc.Session.JurisdictionID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "db load jurisdiction", err, "A database error occurred.", billsURL(sc)+"/"+bill.ID.Hex())
		return
	}

	key := documentKey(jurisdiction.Code, sc.Session.StartDate.Year(), bill.BillNumber, header.Filename)

	err = h.Storage.Put(ctx, key, bytes.NewReader(data), &storage.PutOptions{
		ContentType: contentType,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store bill document", err, "The document could not be stored.", billsURL(sc)+"/"+bill.ID.Hex())
		return
	}

	// Extraction is best effort: a scanned PDF with no text layer still
	// uploads fine, it just isn't searchable.
	fullText, err := extract.Text(data, contentType)
	if err != nil {
		h.Log.Warn("document text extraction failed",
			zap.String("bill_id", bill.ID.Hex()),
			zap.String("filename", header.Filename),
			zap.Error(err))
		fullText = ""
	}

	if err := h.Bills.SetDocument(ctx, bill.ID, key, header.Filename, contentType, header.Size, fullText); err != nil {
		h.ErrLog.LogServerError(w, r, "db set bill document", err, "A database error occurred.", billsURL(sc)+"/"+bill.ID.Hex())
		return
	}

	h.Log.Info("bill document uploaded",
		zap.String("bill_id", bill.ID.Hex()),
		zap.String("key", key),
		zap.Int64("size", header.Size))

	http.Redirect(w, r, billsURL(sc)+"/"+bill.ID.Hex(), http.StatusSeeOther)
}

// documentKey builds the storage key for a bill document:
// bills/<jurisdiction>/<year>/<bill number>/<uuid8>-<filename>.
func documentKey(jurisdictionCode string, year int, billNumber, filename string) string {
	unique := uuid.New().String()[:8]
	return fmt.Sprintf("bills/%s/%d/%s/%s-%s",
		strings.ToLower(jurisdictionCode), year,
		strings.ToLower(strings.ReplaceAll(billNumber, " ", "-")),
		unique, sanitizeFilename(filename))
}

// sanitizeFilename strips path components and characters that are unsafe in
// storage keys.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
