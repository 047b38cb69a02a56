package ledger

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"press-inventory/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session identifies who performs a mutation. It is passed into every
// mutating call; the engine keeps no per-user state.
type Session struct {
	UserID   uint
	UserName string
}

// Actor returns the name recorded on created transactions.
func (s Session) Actor() string {
	if s.UserName != "" {
		return s.UserName
	}
	if s.UserID != 0 {
		return "user#" + strconv.FormatUint(uint64(s.UserID), 10)
	}
	return "system"
}

// NewTransaction is a single-entry submission.
type NewTransaction struct {
	Category    models.Category
	Subcategory string
	Type        models.TxType
	Quantity    decimal.Decimal
	Date        time.Time
	Supplier    string
	Notes       string
}

// Engine bundles the store with its projector, importer and query engine.
type Engine struct {
	Store     *Store
	Projector *Projector
	Importer  *Importer
	Query     *Query
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	return newEngine(NewStore(db, opts...))
}

// Bind returns an engine over db, typically an open database transaction,
// sharing the clock of e.
func (e *Engine) Bind(db *gorm.DB) *Engine {
	return newEngine(&Store{db: db, now: e.Store.now})
}

func newEngine(store *Store) *Engine {
	return &Engine{
		Store:     store,
		Projector: NewProjector(store),
		Importer:  NewImporter(store),
		Query:     NewQuery(store),
	}
}

// AddTransaction appends one movement and folds it into the snapshot.
func (e *Engine) AddTransaction(sess Session, in NewTransaction) (models.Transaction, models.StockEntry, error) {
	tx := models.Transaction{
		Category:    in.Category,
		Subcategory: strings.TrimSpace(in.Subcategory),
		Type:        models.TxType(strings.ToUpper(strings.TrimSpace(string(in.Type)))),
		Quantity:    in.Quantity,
		Date:        in.Date,
		Supplier:    strings.TrimSpace(in.Supplier),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   sess.Actor(),
	}
	var entry models.StockEntry
	err := e.Store.Transaction(func(s *Store) error {
		if err := s.AppendTransaction(&tx); err != nil {
			return err
		}
		var err error
		entry, err = NewProjector(s).ApplyDelta(tx.Key(), tx.Type, tx.Quantity, tx.Supplier)
		return err
	})
	if err != nil {
		return models.Transaction{}, models.StockEntry{}, err
	}
	return tx, entry, nil
}

// RestoreTransaction appends a copy of a previously deleted movement and
// recomputes its key. Its original ID is not reused.
func (e *Engine) RestoreTransaction(sess Session, old models.Transaction) (models.Transaction, models.StockEntry, error) {
	tx := old
	if tx.CreatedBy == "" {
		tx.CreatedBy = sess.Actor()
	}
	var entry models.StockEntry
	err := e.Store.Transaction(func(s *Store) error {
		if err := s.AppendTransaction(&tx); err != nil {
			return err
		}
		var err error
		entry, err = NewProjector(s).Recompute(tx.Key())
		return err
	})
	if err != nil {
		return models.Transaction{}, models.StockEntry{}, err
	}
	return tx, entry, nil
}

// DeleteTransaction removes a movement and recomputes its key. It returns
// the removed transaction and the recomputed entry.
func (e *Engine) DeleteTransaction(sess Session, id uint) (models.Transaction, models.StockEntry, error) {
	var (
		tx    models.Transaction
		entry models.StockEntry
	)
	err := e.Store.Transaction(func(s *Store) error {
		var err error
		if tx, err = s.GetTransaction(id); err != nil {
			return err
		}
		if err := s.DeleteTransaction(id); err != nil {
			return err
		}
		entry, err = NewProjector(s).Recompute(tx.Key())
		return err
	})
	if err != nil {
		return models.Transaction{}, models.StockEntry{}, err
	}
	return tx, entry, nil
}

// DeleteSubcategory removes the stock entry of key and, when withTransactions
// is set, every transaction of the key. Keys match case-insensitively.
// Kept transactions bring the entry back on the next recompute.
func (e *Engine) DeleteSubcategory(sess Session, key models.SKU, withTransactions bool) (removedStock int64, removedTx []models.Transaction, err error) {
	if !key.Category.Valid() {
		return 0, nil, invalid("category", "unknown category %q", key.Category)
	}
	if strings.TrimSpace(key.Subcategory) == "" {
		return 0, nil, invalid("subcategory", "is required")
	}
	err = e.Store.Transaction(func(s *Store) error {
		var err error
		if withTransactions {
			if removedTx, err = s.DeleteTransactionsFor(key); err != nil {
				return err
			}
		}
		removedStock, err = NewProjector(s).Forget(key)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	if removedStock == 0 && len(removedTx) == 0 {
		return 0, nil, &NotFoundError{Entity: "subcategory", Key: key.String()}
	}
	return removedStock, removedTx, nil
}

// Rebuild recomputes the whole snapshot from the ledger.
func (e *Engine) Rebuild() ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := e.Store.Transaction(func(s *Store) error {
		var err error
		entries, err = NewProjector(s).RecomputeAll()
		return err
	})
	return entries, err
}

// Check reports divergences between the snapshot and the ledger without fixing them.
func (e *Engine) Check() error {
	return e.Projector.Verify()
}

// Repair verifies the snapshot and rebuilds it when it diverges. It returns
// the mismatches that were repaired, nil when the snapshot was consistent.
func (e *Engine) Repair() ([]Mismatch, error) {
	var cerr *ConsistencyError
	err := e.Check()
	switch {
	case err == nil:
		return nil, nil
	case !errors.As(err, &cerr):
		return nil, err
	}
	if _, err := e.Rebuild(); err != nil {
		return nil, err
	}
	return cerr.Mismatches, nil
}

// Import validates and merges rows. See Importer.ImportBatch.
func (e *Engine) Import(sess Session, rows []Row) (ImportResult, error) {
	return e.Importer.ImportBatch(sess, rows)
}
