package ledger

import (
	"sort"
	"strings"
	"time"

	"press-inventory/internal/models"

	"github.com/shopspring/decimal"
)

// Query answers read-only questions over the ledger and the snapshot.
// It never writes; concurrent calls are safe.
type Query struct {
	store *Store
}

func NewQuery(store *Store) *Query {
	return &Query{store: store}
}

// Criteria narrows Filter. Zero fields are ignored; From and To are inclusive days.
type Criteria struct {
	From        *time.Time
	To          *time.Time
	Category    *models.Category
	Type        *models.TxType
	Subcategory string
	Text        string // optional Search term applied on top of the other fields
}

// Totals holds the quantity moved in each direction.
type Totals struct {
	In  decimal.Decimal `json:"in"`
	Out decimal.Decimal `json:"out"`
}

// Net returns In minus Out.
func (t Totals) Net() decimal.Decimal { return t.In.Sub(t.Out) }

// Summary describes a set of transactions.
type Summary struct {
	Count int             `json:"count"`
	In    decimal.Decimal `json:"total_in"`
	Out   decimal.Decimal `json:"total_out"`
	Net   decimal.Decimal `json:"net"`
}

// Search returns the transactions whose notes, supplier or subcategory
// contain text, ignoring case, in ledger order. A blank text matches nothing.
func (q *Query) Search(text string) ([]models.Transaction, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Transaction{}, nil
	}
	txs, err := q.store.ReadAllTransactions()
	if err != nil {
		return nil, err
	}
	return SearchIn(txs, text), nil
}

// SearchIn is Search over an in-memory sequence. The text is matched as
// given; surrounding spaces are part of the substring.
func SearchIn(txs []models.Transaction, text string) []models.Transaction {
	out := []models.Transaction{}
	if strings.TrimSpace(text) == "" {
		return out
	}
	needle := strings.ToLower(text)
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Notes), needle) ||
			strings.Contains(strings.ToLower(tx.Supplier), needle) ||
			strings.Contains(strings.ToLower(tx.Subcategory), needle) {
			out = append(out, tx)
		}
	}
	return out
}

// Filter returns the transactions matching every supplied criterion, in ledger order.
func (q *Query) Filter(c Criteria) ([]models.Transaction, error) {
	txs, err := q.store.ReadAllTransactions()
	if err != nil {
		return nil, err
	}
	return FilterIn(txs, c), nil
}

// FilterIn is Filter over an in-memory sequence.
func FilterIn(txs []models.Transaction, c Criteria) []models.Transaction {
	var from, to time.Time
	if c.From != nil {
		from = Day(*c.From)
	}
	if c.To != nil {
		to = Day(*c.To)
	}
	sub := strings.ToLower(strings.TrimSpace(c.Subcategory))
	out := []models.Transaction{}
	for _, tx := range txs {
		d := Day(tx.Date)
		switch {
		case c.From != nil && d.Before(from):
			continue
		case c.To != nil && d.After(to):
			continue
		case c.Category != nil && tx.Category != *c.Category:
			continue
		case c.Type != nil && tx.Type != *c.Type:
			continue
		case sub != "" && strings.ToLower(tx.Subcategory) != sub:
			continue
		}
		out = append(out, tx)
	}
	if strings.TrimSpace(c.Text) != "" {
		out = SearchIn(out, c.Text)
	}
	return out
}

// AggregateByCategory sums IN and OUT quantities per category of txs.
// Categories without movements are absent from the map.
func AggregateByCategory(txs []models.Transaction) map[models.Category]Totals {
	out := make(map[models.Category]Totals)
	for _, tx := range txs {
		t := out[tx.Category]
		if tx.Type == models.TxIn {
			t.In = t.In.Add(tx.Quantity)
		} else {
			t.Out = t.Out.Add(tx.Quantity)
		}
		out[tx.Category] = t
	}
	return out
}

// Summarize counts txs and totals both directions.
func Summarize(txs []models.Transaction) Summary {
	s := Summary{Count: len(txs), In: decimal.Zero, Out: decimal.Zero}
	for _, tx := range txs {
		if tx.Type == models.TxIn {
			s.In = s.In.Add(tx.Quantity)
		} else {
			s.Out = s.Out.Add(tx.Quantity)
		}
	}
	s.Net = s.In.Sub(s.Out)
	return s
}

// LowStock returns the entries strictly below threshold, lowest first.
func (q *Query) LowStock(threshold decimal.Decimal) ([]models.StockEntry, error) {
	entries, err := q.store.ReadAllStock()
	if err != nil {
		return nil, err
	}
	out := []models.StockEntry{}
	for _, e := range entries {
		if e.RemainingQty.LessThan(threshold) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].RemainingQty.Cmp(out[j].RemainingQty); c != 0 {
			return c < 0
		}
		return lessKey(out[i].Key(), out[j].Key())
	})
	return out, nil
}

// Subcategories lists the known subcategories of category, from both the
// snapshot and the ledger, sorted.
func (q *Query) Subcategories(category models.Category) ([]string, error) {
	entries, err := q.store.ReadAllStock()
	if err != nil {
		return nil, err
	}
	txs, err := q.store.ReadAllTransactions()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, e := range entries {
		if e.Category == category && e.Subcategory != "" {
			set[e.Subcategory] = struct{}{}
		}
	}
	for _, tx := range txs {
		if tx.Category == category && tx.Subcategory != "" {
			set[tx.Subcategory] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// History returns the movements of category, newest day first. An empty
// subcategory selects the whole category. limit <= 0 means no limit.
func (q *Query) History(category models.Category, subcategory string, limit int) ([]models.Transaction, error) {
	c := Criteria{Category: &category, Subcategory: subcategory}
	txs, err := q.Filter(c)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	return truncate(txs, limit), nil
}

// Recent returns the latest recorded movements by creation time.
func (q *Query) Recent(limit int) ([]models.Transaction, error) {
	txs, err := q.store.ReadAllTransactions()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].ID > txs[j].ID
	})
	return truncate(txs, limit), nil
}

// CurrentStock returns the entries of category holding a positive quantity,
// ordered by subcategory.
func (q *Query) CurrentStock(category models.Category) ([]models.StockEntry, error) {
	entries, err := q.store.ReadAllStock()
	if err != nil {
		return nil, err
	}
	out := []models.StockEntry{}
	for _, e := range entries {
		if e.Category == category && e.RemainingQty.IsPositive() {
			out = append(out, e)
		}
	}
	return out, nil
}

// Stock returns the whole snapshot, or one category of it when category is non-nil.
func (q *Query) Stock(category *models.Category) ([]models.StockEntry, error) {
	entries, err := q.store.ReadAllStock()
	if err != nil {
		return nil, err
	}
	if category == nil {
		return entries, nil
	}
	out := []models.StockEntry{}
	for _, e := range entries {
		if e.Category == *category {
			out = append(out, e)
		}
	}
	return out, nil
}

func truncate(txs []models.Transaction, limit int) []models.Transaction {
	if limit > 0 && len(txs) > limit {
		return txs[:limit]
	}
	return txs
}
