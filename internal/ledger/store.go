package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"press-inventory/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store gives durable access to the three record collections: the
// transaction ledger, the stock snapshot and the entry templates.
//
// Every call goes to the database; nothing is cached between calls.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for creation and update timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock reading.
func (s *Store) Now() time.Time { return s.now() }

// Transaction runs fn against a store bound to a single database transaction.
// Any error returned by fn rolls back every write made through it.
func (s *Store) Transaction(fn func(*Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})
}

// --- transactions ---

// AppendTransaction validates tx, assigns its ID and CreatedAt and persists it.
func (s *Store) AppendTransaction(tx *models.Transaction) error {
	tx.Subcategory = strings.TrimSpace(tx.Subcategory)
	if err := validateTransaction(tx); err != nil {
		return err
	}
	tx.ID = 0
	tx.Date = Day(tx.Date)
	tx.CreatedAt = s.now()
	if err := s.db.Create(tx).Error; err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.Key(), err)
	}
	return nil
}

func validateTransaction(tx *models.Transaction) error {
	switch {
	case !tx.Category.Valid():
		return invalid("category", "unknown category %q", tx.Category)
	case tx.Subcategory == "":
		return invalid("subcategory", "is required")
	case !tx.Type.Valid():
		return invalid("type", "unknown type %q want IN or OUT", tx.Type)
	case !tx.Quantity.IsPositive():
		return invalid("quantity", "must be greater than zero, got %s", tx.Quantity)
	case !tx.Quantity.Equal(tx.Quantity.Round(QuantityScale)):
		return invalid("quantity", "at most %d decimal places, got %s", QuantityScale, tx.Quantity)
	case tx.Date.IsZero():
		return invalid("date", "is required")
	}
	return nil
}

// DeleteTransaction removes the transaction. The stock snapshot is left
// untouched: callers must recompute the key afterwards.
func (s *Store) DeleteTransaction(id uint) error {
	res := s.db.Delete(&models.Transaction{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "transaction", Key: strconv.FormatUint(uint64(id), 10)}
	}
	return nil
}

func (s *Store) GetTransaction(id uint) (models.Transaction, error) {
	var tx models.Transaction
	err := s.db.First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx, &NotFoundError{Entity: "transaction", Key: strconv.FormatUint(uint64(id), 10)}
	}
	if err != nil {
		return tx, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// ReadAllTransactions returns the whole ledger in insertion order.
func (s *Store) ReadAllTransactions() ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Order("id ASC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return txs, nil
}

// TransactionsFor returns the ledger rows of one SKU in insertion order.
func (s *Store) TransactionsFor(key models.SKU) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Where("category = ? AND subcategory = ?", key.Category, key.Subcategory).
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("read transactions of %s: %w", key, err)
	}
	return txs, nil
}

// DeleteTransactionsFor removes every transaction of the SKU, matching the
// key case-insensitively. It returns the removed rows.
func (s *Store) DeleteTransactionsFor(key models.SKU) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := s.db.Where("LOWER(category) = ? AND LOWER(subcategory) = ?",
		strings.ToLower(string(key.Category)), strings.ToLower(strings.TrimSpace(key.Subcategory)))
	if err := q.Order("id ASC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("read transactions of %s: %w", key, err)
	}
	if len(txs) == 0 {
		return nil, nil
	}
	ids := make([]uint, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	if err := s.db.Delete(&models.Transaction{}, ids).Error; err != nil {
		return nil, fmt.Errorf("delete transactions of %s: %w", key, err)
	}
	return txs, nil
}

// --- stock ---

// UpsertStock replaces or creates the stock entry of e's key.
func (s *Store) UpsertStock(e models.StockEntry) error {
	e.ID = 0
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "subcategory"}},
		DoUpdates: clause.AssignmentColumns([]string{"remaining_qty", "last_updated", "supplier"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", e.Key(), err)
	}
	return nil
}

func (s *Store) GetStock(key models.SKU) (models.StockEntry, error) {
	var e models.StockEntry
	err := s.db.Where("category = ? AND subcategory = ?", key.Category, key.Subcategory).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e, &NotFoundError{Entity: "stock entry", Key: key.String()}
	}
	if err != nil {
		return e, fmt.Errorf("get stock %s: %w", key, err)
	}
	return e, nil
}

// ReadAllStock returns the stock snapshot ordered by category and subcategory.
func (s *Store) ReadAllStock() ([]models.StockEntry, error) {
	var entries []models.StockEntry
	if err := s.db.Order("category ASC, subcategory ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	return entries, nil
}

// DeleteStock removes the stock entry of the SKU, matching case-insensitively.
func (s *Store) DeleteStock(key models.SKU) (int64, error) {
	res := s.db.Where("LOWER(category) = ? AND LOWER(subcategory) = ?",
		strings.ToLower(string(key.Category)), strings.ToLower(strings.TrimSpace(key.Subcategory))).
		Delete(&models.StockEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete stock %s: %w", key, res.Error)
	}
	return res.RowsAffected, nil
}

// --- templates ---

// AppendTemplate persists a new template. Template names are unique per category.
func (s *Store) AppendTemplate(t *models.Template) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Subcategory = strings.TrimSpace(t.Subcategory)
	t.Supplier = strings.TrimSpace(t.Supplier)
	switch {
	case t.Name == "":
		return invalid("name", "is required")
	case !t.Category.Valid():
		return invalid("category", "unknown category %q", t.Category)
	case t.Subcategory == "":
		return invalid("subcategory", "is required")
	}
	if err := s.ensureTemplateNameFree(t.Category, t.Name, 0); err != nil {
		return err
	}
	t.ID = 0
	t.CreatedAt = s.now()
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("append template %q: %w", t.Name, err)
	}
	return nil
}

func (s *Store) ensureTemplateNameFree(category models.Category, name string, except uint) error {
	var count int64
	q := s.db.Model(&models.Template{}).Where("category = ? AND name = ?", category, name)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check template %q: %w", name, err)
	}
	if count > 0 {
		return invalid("name", "template %q already exists for %s", name, category)
	}
	return nil
}

func (s *Store) GetTemplate(id uint) (models.Template, error) {
	var t models.Template
	err := s.db.First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, &NotFoundError{Entity: "template", Key: strconv.FormatUint(uint64(id), 10)}
	}
	if err != nil {
		return t, fmt.Errorf("get template %d: %w", id, err)
	}
	return t, nil
}

// FindTemplate looks a template up by category and name.
func (s *Store) FindTemplate(category models.Category, name string) (models.Template, error) {
	var t models.Template
	err := s.db.Where("category = ? AND name = ?", category, strings.TrimSpace(name)).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, &NotFoundError{Entity: "template", Key: string(category) + "/" + name}
	}
	if err != nil {
		return t, fmt.Errorf("find template %q: %w", name, err)
	}
	return t, nil
}

// RenameTemplate changes the name of template id and returns the updated record.
func (s *Store) RenameTemplate(id uint, name string) (models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Template{}, invalid("name", "is required")
	}
	t, err := s.GetTemplate(id)
	if err != nil {
		return t, err
	}
	if err := s.ensureTemplateNameFree(t.Category, name, id); err != nil {
		return t, err
	}
	if err := s.db.Model(&t).Update("name", name).Error; err != nil {
		return t, fmt.Errorf("rename template %d: %w", id, err)
	}
	t.Name = name
	return t, nil
}

func (s *Store) DeleteTemplate(id uint) error {
	res := s.db.Delete(&models.Template{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete template %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "template", Key: strconv.FormatUint(uint64(id), 10)}
	}
	return nil
}

// ReadAllTemplates returns every template ordered by category and name.
func (s *Store) ReadAllTemplates() ([]models.Template, error) {
	var ts []models.Template
	if err := s.db.Order("category ASC, name ASC").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ts, nil
}
