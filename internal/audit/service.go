package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"press-inventory/internal/ledger"
	"press-inventory/internal/logger"
	"press-inventory/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyUndone = errors.New("this action has already been undone")
	ErrNotUndoable   = errors.New("this action cannot be undone")
)

type LogOptions struct {
	Session     ledger.Session
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Service writes the audit trail and reverts logged ledger and template changes.
type Service struct {
	db     *gorm.DB
	engine *ledger.Engine
	now    func() time.Time
}

func NewService(db *gorm.DB, engine *ledger.Engine) *Service {
	return &Service{db: db, engine: engine, now: time.Now}
}

func (s *Service) WriteLog(opts LogOptions) error {
	log := models.AuditLog{
		UserID:      opts.Session.UserID,
		UserName:    opts.Session.Actor(),
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}

	if err := s.db.Create(&log).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes a log entry and only reports failures to the logger. The
// audited change has already been committed when it is called.
func (s *Service) Record(opts LogOptions) {
	if err := s.WriteLog(opts); err != nil {
		logger.L.Error("audit log not written", "entity", opts.EntityType, "id", opts.EntityID, "action", opts.Action, "error", err)
	}
}

// encode stores "null" for nil values so the columns always hold valid JSON.
func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// List returns the logs matching f, newest first.
func (s *Service) List(f Filter) ([]models.AuditLog, error) {
	q := s.db.Model(&models.AuditLog{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	UserID     uint
	EntityType string
	EntityID   uint
	Limit      int
}

// UndoLog reverts the change recorded by log logID. Undoing a transaction
// change always ends with a recompute of the affected stock entry. The revert
// and the log updates commit together.
func (s *Service) UndoLog(logID uint, sess ledger.Session) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.undo(tx, logID, sess)
	})
}

func (s *Service) undo(db *gorm.DB, logID uint, sess ledger.Session) error {
	var log models.AuditLog
	if err := db.First(&log, logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ledger.NotFoundError{Entity: "audit log", Key: fmt.Sprint(logID)}
		}
		return fmt.Errorf("load audit log %d: %w", logID, err)
	}
	if log.IsUndone {
		return ErrAlreadyUndone
	}

	if err := revert(s.engine.Bind(db), log, sess); err != nil {
		return err
	}

	now := s.now()
	log.IsUndone = true
	log.UndoneBy = &sess.UserID
	log.UndoneAt = &now
	if err := db.Save(&log).Error; err != nil {
		return fmt.Errorf("mark audit log %d undone: %w", logID, err)
	}

	undo := models.AuditLog{
		UserID:      sess.UserID,
		UserName:    sess.Actor(),
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: "Undone: " + log.Description,
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
	}
	if err := db.Create(&undo).Error; err != nil {
		return fmt.Errorf("write undo log: %w", err)
	}
	return nil
}

func revert(engine *ledger.Engine, log models.AuditLog, sess ledger.Session) error {
	switch log.EntityType {
	case models.EntityTransaction:
		switch log.Action {
		case models.AuditActionCreate:
			_, _, err := engine.DeleteTransaction(sess, log.EntityID)
			return err
		case models.AuditActionDelete:
			var tx models.Transaction
			if err := json.Unmarshal([]byte(log.BeforeData), &tx); err != nil {
				return fmt.Errorf("decode deleted transaction: %w", err)
			}
			_, _, err := engine.RestoreTransaction(sess, tx)
			return err
		}

	case models.EntityTemplate:
		switch log.Action {
		case models.AuditActionCreate:
			return engine.Store.DeleteTemplate(log.EntityID)
		case models.AuditActionUpdate:
			var before models.Template
			if err := json.Unmarshal([]byte(log.BeforeData), &before); err != nil {
				return fmt.Errorf("decode template: %w", err)
			}
			_, err := engine.Store.RenameTemplate(log.EntityID, before.Name)
			return err
		case models.AuditActionDelete:
			var before models.Template
			if err := json.Unmarshal([]byte(log.BeforeData), &before); err != nil {
				return fmt.Errorf("decode template: %w", err)
			}
			return engine.Store.AppendTemplate(&before)
		}
	}
	return ErrNotUndoable
}
