package billstore_test

import (
	"errors"
	"fmt"
	"testing"

	billstore "github.com/dalemusser/billtrack/internal/app/store/bills"
	"github.com/dalemusser/billtrack/internal/app/system/paging"
	"github.com/dalemusser/billtrack/internal/domain/models"
	"github.com/dalemusser/billtrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "California", "CA")
	session := f.CreateSession(ctx, "CA-2025", j.ID)

	store := billstore.New(db)
	bill, err := store.Create(ctx, billstore.NewBill{
		SessionID:      session.ID,
		JurisdictionID: j.ID,
		BillNumber:     "AB 123",
		Title:          "Clean Water Act",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if bill.Status != models.BillIntroduced {
		t.Errorf("default status: got %q, want %q", bill.Status, models.BillIntroduced)
	}
	if bill.Priority != models.PriorityNormal {
		t.Errorf("default priority: got %q, want %q", bill.Priority, models.PriorityNormal)
	}
}

func TestCreate_DuplicateBillNumberPerSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := billstore.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Texas", "TX")
	s1 := f.CreateSession(ctx, "TX-2025", j.ID)
	s2 := f.CreateSession(ctx, "TX-2026", j.ID)

	in := billstore.NewBill{
		SessionID:      s1.ID,
		JurisdictionID: j.ID,
		BillNumber:     "HB 1",
		Title:          "Budget",
	}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}

	if _, err := store.Create(ctx, in); !errors.Is(err, billstore.ErrDuplicateBillNumber) {
		t.Errorf("same session duplicate: got %v, want ErrDuplicateBillNumber", err)
	}

	// Bill numbers are only unique within a session.
	in.SessionID = s2.ID
	if _, err := store.Create(ctx, in); err != nil {
		t.Errorf("other session with same number: got %v, want nil", err)
	}
}

func TestList_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Oregon", "OR")
	session := f.CreateSession(ctx, "OR-2025", j.ID)
	other := f.CreateSession(ctx, "OR-2026", j.ID)
	assignee := primitive.NewObjectID()

	store := billstore.New(db)
	mustCreate := func(in billstore.NewBill) *models.Bill {
		t.Helper()
		b, err := store.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create(%s) error: %v", in.BillNumber, err)
		}
		return b
	}

	mustCreate(billstore.NewBill{
		SessionID: session.ID, JurisdictionID: j.ID,
		BillNumber: "SB 10", Title: "Water Rights",
		Status: models.BillInCommittee, AssignedTo: &assignee,
	})
	mustCreate(billstore.NewBill{
		SessionID: session.ID, JurisdictionID: j.ID,
		BillNumber: "SB 20", Title: "Wildfire Response",
		Status: models.BillPassed, Priority: models.PriorityHigh,
	})
	mustCreate(billstore.NewBill{
		SessionID: other.ID, JurisdictionID: j.ID,
		BillNumber: "SB 30", Title: "Water Storage",
	})

	cases := []struct {
		name   string
		filter billstore.ListFilter
		want   []string
	}{
		{"session only", billstore.ListFilter{SessionID: session.ID}, []string{"SB 10", "SB 20"}},
		{"status", billstore.ListFilter{SessionID: session.ID, Status: models.BillPassed}, []string{"SB 20"}},
		{"priority", billstore.ListFilter{SessionID: session.ID, Priority: models.PriorityHigh}, []string{"SB 20"}},
		{"assignee", billstore.ListFilter{SessionID: session.ID, AssignedTo: &assignee}, []string{"SB 10"}},
		{"title prefix", billstore.ListFilter{SessionID: session.ID, Search: "water"}, []string{"SB 10"}},
		{"bill number", billstore.ListFilter{SessionID: session.ID, Search: "SB 20"}, []string{"SB 20"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := store.List(ctx, tc.filter, paging.ConfigureKeyset("", ""))
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			var got []string
			for _, b := range rows {
				got = append(got, b.BillNumber)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("row %d: got %v, want %v", i, got, tc.want)
				}
			}
		})
	}
}

func TestList_KeysetPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Nevada", "NV")
	session := f.CreateSession(ctx, "NV-2025", j.ID)

	store := billstore.New(db)
	total := paging.PageSize + 10
	for i := 0; i < total; i++ {
		_, err := store.Create(ctx, billstore.NewBill{
			SessionID:      session.ID,
			JurisdictionID: j.ID,
			BillNumber:     fmt.Sprintf("AB %d", i),
			Title:          fmt.Sprintf("Measure %03d", i),
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	filter := billstore.ListFilter{SessionID: session.ID}

	// First page.
	rows, err := store.List(ctx, filter, paging.ConfigureKeyset("", ""))
	if err != nil {
		t.Fatalf("List() first page error: %v", err)
	}
	res := paging.TrimPage(&rows, "", "")
	if len(rows) != paging.PageSize {
		t.Fatalf("first page size: got %d, want %d", len(rows), paging.PageSize)
	}
	if res.HasPrev || !res.HasNext {
		t.Errorf("first page indicators: HasPrev=%v HasNext=%v", res.HasPrev, res.HasNext)
	}

	_, next := paging.BuildCursors(rows,
		func(b models.Bill) string { return b.TitleCI },
		func(b models.Bill) primitive.ObjectID { return b.ID })

	// Second page continues where the first left off.
	rows2, err := store.List(ctx, filter, paging.ConfigureKeyset("", next))
	if err != nil {
		t.Fatalf("List() second page error: %v", err)
	}
	res2 := paging.TrimPage(&rows2, "", next)
	if len(rows2) != total-paging.PageSize {
		t.Fatalf("second page size: got %d, want %d", len(rows2), total-paging.PageSize)
	}
	if !res2.HasPrev || res2.HasNext {
		t.Errorf("second page indicators: HasPrev=%v HasNext=%v", res2.HasPrev, res2.HasNext)
	}
	if rows2[0].TitleCI <= rows[len(rows)-1].TitleCI {
		t.Errorf("second page starts at %q, before end of first page %q",
			rows2[0].TitleCI, rows[len(rows)-1].TitleCI)
	}
}

func TestSetDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Utah", "UT")
	session := f.CreateSession(ctx, "UT-2025", j.ID)
	bill := f.CreateBill(ctx, session.ID, j.ID, "HB 7", "Transit Funding")

	store := billstore.New(db)
	err := store.SetDocument(ctx, bill.ID, "bills/UT/2025/hb7/doc.pdf", "doc.pdf", "application/pdf", 1234, "full text")
	if err != nil {
		t.Fatalf("SetDocument() error: %v", err)
	}

	got, err := store.GetByID(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !got.HasDocument() {
		t.Error("HasDocument() should be true after SetDocument")
	}
	if got.DocumentName != "doc.pdf" || got.DocumentSize != 1234 {
		t.Errorf("document fields: name=%q size=%d", got.DocumentName, got.DocumentSize)
	}
}

func TestCountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	j := f.CreateJurisdiction(ctx, "Idaho", "ID")
	session := f.CreateSession(ctx, "ID-2025", j.ID)

	store := billstore.New(db)
	for i, status := range []string{models.BillIntroduced, models.BillIntroduced, models.BillPassed} {
		_, err := store.Create(ctx, billstore.NewBill{
			SessionID:      session.ID,
			JurisdictionID: j.ID,
			BillNumber:     fmt.Sprintf("HB %d", i),
			Title:          fmt.Sprintf("Bill %d", i),
			Status:         status,
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	counts, err := store.CountByStatus(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountByStatus() error: %v", err)
	}
	if counts[models.BillIntroduced] != 2 || counts[models.BillPassed] != 1 {
		t.Errorf("counts: %v", counts)
	}
}
