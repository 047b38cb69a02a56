package ledger

import (
	"testing"
	"time"

	"press-inventory/internal/models"

	"github.com/google/go-cmp/cmp"
)

func ids(txs []models.Transaction) []uint {
	out := []uint{}
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestQuery_Search(t *testing.T) {
	e := newTestEngine(t)
	a := appendTx(t, e, models.CategoryPaper, "A4", models.TxIn, 10, D(2025, time.January, 1), "ACME Corp")
	b := appendTx(t, e, models.CategoryInks, "Acme Blue", models.TxIn, 1, D(2025, time.January, 1), "")
	c := models.Transaction{Category: models.CategoryChemicals, Subcategory: "Fixer", Type: models.TxOut, Quantity: Q(1), Date: D(2025, time.January, 2), Notes: "returned to acme"}
	if err := e.Store.AppendTransaction(&c); err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	appendTx(t, e, models.CategoryPaper, "A3", models.TxIn, 10, D(2025, time.January, 1), "Other")

	testCases := []struct {
		text string
		want []uint
	}{
		{"", []uint{}},
		{"   ", []uint{}},
		{"acme", []uint{a.ID, b.ID, c.ID}},
		{"ACME", []uint{a.ID, b.ID, c.ID}},
		{"corp", []uint{a.ID}},
		{"Corp ", []uint{}},
		{"to acme", []uint{c.ID}},
		{"nothing", []uint{}},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := e.Query.Search(tc.text)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tc.text, err)
			}
			if got == nil {
				t.Fatalf("Search(%q) = nil, want empty slice", tc.text)
			}
			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestQuery_Filter(t *testing.T) {
	e := newTestEngine(t)
	jan1 := appendTx(t, e, models.CategoryPaper, "A4", models.TxIn, 10, D(2025, time.January, 1), "")
	jan5 := appendTx(t, e, models.CategoryPaper, "A4", models.TxOut, 2, D(2025, time.January, 5), "")
	jan10 := appendTx(t, e, models.CategoryInks, "Cyan", models.TxIn, 3, D(2025, time.January, 10), "")
	jan11 := appendTx(t, e, models.CategoryPaper, "A3", models.TxIn, 3, D(2025, time.January, 11), "")

	from, to := D(2025, time.January, 1), D(2025, time.January, 10)
	paper, out := models.CategoryPaper, models.TxOut

	testCases := []struct {
		name string
		c    Criteria
		want []uint
	}{
		{"no criteria", Criteria{}, []uint{jan1.ID, jan5.ID, jan10.ID, jan11.ID}},
		{"inclusive range", Criteria{From: &from, To: &to}, []uint{jan1.ID, jan5.ID, jan10.ID}},
		{"single day", Criteria{From: &to, To: &to}, []uint{jan10.ID}},
		{"category", Criteria{Category: &paper}, []uint{jan1.ID, jan5.ID, jan11.ID}},
		{"category and type", Criteria{Category: &paper, Type: &out}, []uint{jan5.ID}},
		{"subcategory ignores case", Criteria{Subcategory: "a4"}, []uint{jan1.ID, jan5.ID}},
		{"range and category", Criteria{From: &from, To: &to, Category: &paper}, []uint{jan1.ID, jan5.ID}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Query.Filter(tc.c)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateByCategory(t *testing.T) {
	txs := []models.Transaction{
		{Category: models.CategoryPaper, Type: models.TxIn, Quantity: Q(10)},
		{Category: models.CategoryPaper, Type: models.TxOut, Quantity: Q(4)},
		{Category: models.CategoryInks, Type: models.TxIn, Quantity: Q(2.5)},
		{Category: models.CategoryPaper, Type: models.TxIn, Quantity: Q(1)},
	}
	got := AggregateByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("AggregateByCategory() has %d categories, want 2", len(got))
	}
	if p := got[models.CategoryPaper]; !p.In.Equal(Q(11)) || !p.Out.Equal(Q(4)) || !p.Net().Equal(Q(7)) {
		t.Errorf("Paper = in %s out %s, want 11 and 4", p.In, p.Out)
	}
	if i := got[models.CategoryInks]; !i.In.Equal(Q(2.5)) || !i.Out.IsZero() {
		t.Errorf("Inks = in %s out %s, want 2.5 and 0", i.In, i.Out)
	}

	// Aggregation composes over a filtered subset.
	filtered := FilterIn(txs, Criteria{Type: ptr(models.TxOut)})
	if got := AggregateByCategory(filtered); !got[models.CategoryPaper].Out.Equal(Q(4)) || !got[models.CategoryPaper].In.IsZero() {
		t.Errorf("AggregateByCategory(OUT only) = %+v", got)
	}

	s := Summarize(txs)
	if s.Count != 4 || !s.In.Equal(Q(13.5)) || !s.Out.Equal(Q(4)) || !s.Net.Equal(Q(9.5)) {
		t.Errorf("Summarize() = %+v", s)
	}
}

func ptr[T any](v T) *T { return &v }

func TestQuery_LowStock(t *testing.T) {
	e := newTestEngine(t)
	for _, s := range []struct {
		sub string
		qty float64
	}{{"E", 5}, {"A", 50}, {"B", 1}, {"C", 3}, {"D", 10}} {
		if err := e.Store.UpsertStock(models.StockEntry{Category: models.CategoryPaper, Subcategory: s.sub, RemainingQty: Q(s.qty)}); err != nil {
			t.Fatalf("UpsertStock() error = %v", err)
		}
	}
	got, err := e.Query.LowStock(Q(10))
	if err != nil {
		t.Fatalf("LowStock() error = %v", err)
	}
	var qty []string
	for _, e := range got {
		qty = append(qty, e.RemainingQty.String())
	}
	if diff := cmp.Diff([]string{"1", "3", "5"}, qty); diff != "" {
		t.Errorf("LowStock(10) mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_Helpers(t *testing.T) {
	e := newTestEngine(t)
	clock := D(2025, time.March, 1)
	e.Store.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	old := appendTx(t, e, models.CategoryPaper, "A4", models.TxIn, 10, D(2025, time.January, 1), "")
	newer := appendTx(t, e, models.CategoryPaper, "A4", models.TxOut, 3, D(2025, time.February, 1), "")
	other := appendTx(t, e, models.CategoryPaper, "SRA3", models.TxIn, 1, D(2025, time.January, 15), "")
	ink := appendTx(t, e, models.CategoryInks, "Black", models.TxIn, 1, D(2025, time.January, 20), "")
	if err := e.Store.UpsertStock(models.StockEntry{Category: models.CategoryPaper, Subcategory: "B5", RemainingQty: Q(0)}); err != nil {
		t.Fatalf("UpsertStock() error = %v", err)
	}
	if _, err := e.Rebuild(); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	subs, err := e.Query.Subcategories(models.CategoryPaper)
	if err != nil {
		t.Fatalf("Subcategories() error = %v", err)
	}
	if diff := cmp.Diff([]string{"A4", "B5", "SRA3"}, subs); diff != "" {
		t.Errorf("Subcategories() mismatch (-want +got):\n%s", diff)
	}

	hist, err := e.Query.History(models.CategoryPaper, "A4", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if diff := cmp.Diff([]uint{newer.ID, old.ID}, ids(hist)); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
	all, err := e.Query.History(models.CategoryPaper, "", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if diff := cmp.Diff([]uint{newer.ID, other.ID}, ids(all)); diff != "" {
		t.Errorf("History(limit 2) mismatch (-want +got):\n%s", diff)
	}

	recent, err := e.Query.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if diff := cmp.Diff([]uint{ink.ID, other.ID}, ids(recent)); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}

	cur, err := e.Query.CurrentStock(models.CategoryPaper)
	if err != nil {
		t.Fatalf("CurrentStock() error = %v", err)
	}
	var names []string
	for _, c := range cur {
		names = append(names, c.Subcategory)
	}
	if diff := cmp.Diff([]string{"A4", "SRA3"}, names); diff != "" {
		t.Errorf("CurrentStock() mismatch (-want +got):\n%s", diff)
	}
}
