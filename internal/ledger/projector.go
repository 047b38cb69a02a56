package ledger

import (
	"errors"
	"fmt"
	"sort"

	"press-inventory/internal/models"

	"github.com/shopspring/decimal"
)

// Projector derives the stock snapshot from the ledger. It is the only writer
// of stock entries.
//
// ApplyDelta is an optimization for single appends; Recompute is the source of
// truth and silently overwrites whatever the snapshot held.
type Projector struct {
	store *Store
}

func NewProjector(store *Store) *Projector {
	return &Projector{store: store}
}

// ApplyDelta folds one newly appended movement into the snapshot. A missing
// entry counts as zero. The supplier is only replaced when non-empty.
func (p *Projector) ApplyDelta(key models.SKU, typ models.TxType, qty decimal.Decimal, supplier string) (models.StockEntry, error) {
	entry, err := p.store.GetStock(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return entry, err
	}
	if errors.Is(err, ErrNotFound) {
		entry = models.StockEntry{Category: key.Category, Subcategory: key.Subcategory}
	}
	switch typ {
	case models.TxIn:
		entry.RemainingQty = entry.RemainingQty.Add(qty)
	case models.TxOut:
		entry.RemainingQty = entry.RemainingQty.Sub(qty)
	default:
		return entry, invalid("type", "unknown type %q want IN or OUT", typ)
	}
	if supplier != "" {
		entry.Supplier = supplier
	}
	entry.LastUpdated = p.store.Now()
	if err := p.store.UpsertStock(entry); err != nil {
		return entry, err
	}
	return entry, nil
}

// Recompute rescans the ledger for key and overwrites its stock entry with
// the sum of IN minus OUT. A key without transactions is written as zero.
func (p *Projector) Recompute(key models.SKU) (models.StockEntry, error) {
	txs, err := p.store.TransactionsFor(key)
	if err != nil {
		return models.StockEntry{}, err
	}
	entry := models.StockEntry{Category: key.Category, Subcategory: key.Subcategory}
	prev, err := p.store.GetStock(key)
	switch {
	case err == nil:
		entry.Supplier = prev.Supplier
	case !errors.Is(err, ErrNotFound):
		return entry, err
	}
	entry.RemainingQty = sum(txs)
	if s := lastSupplier(txs); s != "" {
		entry.Supplier = s
	}
	entry.LastUpdated = p.store.Now()
	if err := p.store.UpsertStock(entry); err != nil {
		return entry, err
	}
	return entry, nil
}

// RecomputeAll recomputes every key present in the ledger or in the snapshot,
// so entries whose transactions were all deleted fall back to zero.
func (p *Projector) RecomputeAll() ([]models.StockEntry, error) {
	keys, err := p.keys()
	if err != nil {
		return nil, err
	}
	entries := make([]models.StockEntry, 0, len(keys))
	for _, key := range keys {
		e, err := p.Recompute(key)
		if err != nil {
			return entries, fmt.Errorf("recompute %s: %w", key, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Verify compares the snapshot with a full projection of the ledger without
// writing anything. It returns a *ConsistencyError listing every divergent key.
func (p *Projector) Verify() error {
	txs, err := p.store.ReadAllTransactions()
	if err != nil {
		return err
	}
	stock, err := p.store.ReadAllStock()
	if err != nil {
		return err
	}
	want := Project(txs)
	var mismatches []Mismatch
	seen := make(map[models.SKU]bool, len(stock))
	for _, e := range stock {
		seen[e.Key()] = true
		if got := want[e.Key()]; !got.Equal(e.RemainingQty) {
			mismatches = append(mismatches, Mismatch{Key: e.Key(), Snapshot: e.RemainingQty, Ledger: got})
		}
	}
	for key, qty := range want {
		if !seen[key] {
			mismatches = append(mismatches, Mismatch{Key: key, Snapshot: decimal.Zero, Ledger: qty})
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	sort.Slice(mismatches, func(i, j int) bool { return lessKey(mismatches[i].Key, mismatches[j].Key) })
	return &ConsistencyError{Mismatches: mismatches}
}

// Forget removes the stock entry of key. It returns the number of removed rows.
func (p *Projector) Forget(key models.SKU) (int64, error) {
	return p.store.DeleteStock(key)
}

func (p *Projector) keys() ([]models.SKU, error) {
	txs, err := p.store.ReadAllTransactions()
	if err != nil {
		return nil, err
	}
	stock, err := p.store.ReadAllStock()
	if err != nil {
		return nil, err
	}
	set := make(map[models.SKU]struct{})
	for _, tx := range txs {
		set[tx.Key()] = struct{}{}
	}
	for _, e := range stock {
		set[e.Key()] = struct{}{}
	}
	keys := make([]models.SKU, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	return keys, nil
}

// Project sums IN minus OUT per key over txs.
func Project(txs []models.Transaction) map[models.SKU]decimal.Decimal {
	out := make(map[models.SKU]decimal.Decimal)
	for _, tx := range txs {
		out[tx.Key()] = out[tx.Key()].Add(tx.Signed())
	}
	return out
}

func sum(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}

func lastSupplier(txs []models.Transaction) string {
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].Supplier != "" {
			return txs[i].Supplier
		}
	}
	return ""
}

func lessKey(a, b models.SKU) bool {
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Subcategory < b.Subcategory
}
