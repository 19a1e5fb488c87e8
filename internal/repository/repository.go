package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

// Entity constrains pointers to persisted types carrying the audit fields.
type Entity[T any] interface {
	*T
	Audit() *model.BaseEntity
}

// Repository is the uniform data-access surface shared by every entity type.
// All read methods filter out soft-deleted rows by construction; callers
// that need deleted rows must go through QueryWithDeleted explicitly.
//
// A repository instance owns at most one in-flight transaction. While a
// transaction is active every operation runs inside it.
type Repository[T any, PT Entity[T]] struct {
	db *gorm.DB
	tx *gorm.DB
}

func New[T any, PT Entity[T]](db *gorm.DB) *Repository[T, PT] {
	return &Repository[T, PT]{db: db}
}

// orderColumnPattern restricts GetPaged order columns to plain identifiers.
var orderColumnPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (r *Repository[T, PT]) session() *gorm.DB {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query returns the soft-delete-filtered query surface for callers that
// need joins or eager loading beyond the canned methods.
func (r *Repository[T, PT]) Query(ctx context.Context) *gorm.DB {
	return r.session().WithContext(ctx).Model(new(T)).Where("is_deleted = ?", false)
}

// QueryWithDeleted bypasses the soft-delete filter. Admin and audit tooling
// only.
func (r *Repository[T, PT]) QueryWithDeleted(ctx context.Context) *gorm.DB {
	return r.session().WithContext(ctx).Model(new(T))
}

func (r *Repository[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (PT, error) {
	entity := PT(new(T))
	err := r.session().WithContext(ctx).
		Where("is_deleted = ?", false).
		First(entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return entity, nil
}

func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]PT, error) {
	items := make([]PT, 0)
	if err := r.Query(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	return items, nil
}

// Find returns every non-deleted row matching the condition. The condition
// is a GORM query expression ("email = ?") with its arguments.
func (r *Repository[T, PT]) Find(ctx context.Context, query any, args ...any) ([]PT, error) {
	items := make([]PT, 0)
	if err := r.Query(ctx).Where(query, args...).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return items, nil
}

// FindSingle returns the one row matching the condition, ErrNotFound when
// no row matches, and ErrMultipleResults when more than one does.
func (r *Repository[T, PT]) FindSingle(ctx context.Context, query any, args ...any) (PT, error) {
	items := make([]PT, 0, 2)
	if err := r.Query(ctx).Where(query, args...).Limit(2).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("find single: %w", err)
	}
	switch len(items) {
	case 0:
		return nil, model.ErrNotFound
	case 1:
		return items[0], nil
	default:
		return nil, model.ErrMultipleResults
	}
}

func (r *Repository[T, PT]) Any(ctx context.Context, query any, args ...any) (bool, error) {
	var count int64
	if err := r.Query(ctx).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("any: %w", err)
	}
	return count > 0, nil
}

// Count counts non-deleted rows, optionally narrowed by a condition. Pass a
// nil query to count everything.
func (r *Repository[T, PT]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	q := r.Query(ctx)
	if query != nil {
		q = q.Where(query, args...)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// PageOptions control GetPaged. A zero OrderBy sorts by created_at
// descending (newest first).
type PageOptions struct {
	Page       int
	PageSize   int
	OrderBy    string
	Ascending  bool
	Filter     any
	FilterArgs []any
}

// GetPaged returns one page of non-deleted rows plus the total match count.
func (r *Repository[T, PT]) GetPaged(ctx context.Context, opts PageOptions) ([]PT, int64, error) {
	if opts.Page < 1 {
		return nil, 0, apierror.Validation("page number must be greater than 0", "page")
	}
	if opts.PageSize < 1 || opts.PageSize > 1000 {
		return nil, 0, apierror.Validation("page size must be between 1 and 1000", "page_size")
	}

	q := r.Query(ctx)
	if opts.Filter != nil {
		q = q.Where(opts.Filter, opts.FilterArgs...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("paged count: %w", err)
	}

	order := "created_at DESC"
	if opts.OrderBy != "" {
		if !orderColumnPattern.MatchString(opts.OrderBy) {
			return nil, 0, apierror.Validation("invalid order column", opts.OrderBy)
		}
		direction := "DESC"
		if opts.Ascending {
			direction = "ASC"
		}
		order = opts.OrderBy + " " + direction
	}

	items := make([]PT, 0, opts.PageSize)
	err := q.Order(order).
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("paged find: %w", err)
	}

	return items, total, nil
}

// Add inserts the entity, assigning an identifier and creation timestamp
// when unset.
func (r *Repository[T, PT]) Add(ctx context.Context, entity PT) error {
	if entity == nil {
		return apierror.Validation("entity is required", "")
	}
	stampCreate(entity.Audit())
	if err := r.session().WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

func (r *Repository[T, PT]) AddRange(ctx context.Context, entities []PT) error {
	if len(entities) == 0 {
		return apierror.Validation("entities collection cannot be empty", "")
	}
	for _, entity := range entities {
		stampCreate(entity.Audit())
	}
	if err := r.session().WithContext(ctx).Create(entities).Error; err != nil {
		return fmt.Errorf("add range: %w", err)
	}
	return nil
}

// Update persists the entity and stamps its update timestamp.
func (r *Repository[T, PT]) Update(ctx context.Context, entity PT) error {
	if entity == nil {
		return apierror.Validation("entity is required", "")
	}
	stampUpdate(entity.Audit())
	if err := r.session().WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func (r *Repository[T, PT]) UpdateRange(ctx context.Context, entities []PT) error {
	if len(entities) == 0 {
		return apierror.Validation("entities collection cannot be empty", "")
	}
	for _, entity := range entities {
		if err := r.Update(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes the entity: the row stays in place with the deletion
// triple set. The acting user is mandatory so deletions stay attributable.
func (r *Repository[T, PT]) Delete(ctx context.Context, entity PT, deletedBy string) error {
	if entity == nil {
		return apierror.Validation("entity is required", "")
	}
	if deletedBy == "" {
		return apierror.Validation("deletedBy cannot be empty", "deleted_by")
	}

	now := time.Now().UTC()
	base := entity.Audit()
	base.IsDeleted = true
	base.DeletedAt = &now
	base.DeletedBy = &deletedBy
	base.UpdatedAt = &now

	err := r.session().WithContext(ctx).Model(entity).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
		"deleted_by": deletedBy,
		"updated_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// DeleteByID resolves the entity first so the caller gets ErrNotFound for
// unknown or already-deleted rows.
func (r *Repository[T, PT]) DeleteByID(ctx context.Context, id uuid.UUID, deletedBy string) error {
	if deletedBy == "" {
		return apierror.Validation("deletedBy cannot be empty", "deleted_by")
	}
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.Delete(ctx, entity, deletedBy)
}

// Remove hard-deletes the row. Only for data with no soft-delete semantics.
func (r *Repository[T, PT]) Remove(ctx context.Context, entity PT) error {
	if entity == nil {
		return apierror.Validation("entity is required", "")
	}
	if err := r.session().WithContext(ctx).Delete(entity).Error; err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (r *Repository[T, PT]) RemoveRange(ctx context.Context, entities []PT) error {
	if len(entities) == 0 {
		return apierror.Validation("entities collection cannot be empty", "")
	}
	if err := r.session().WithContext(ctx).Delete(entities).Error; err != nil {
		return fmt.Errorf("remove range: %w", err)
	}
	return nil
}

// BeginTransaction starts a transaction scoped to this repository instance.
func (r *Repository[T, PT]) BeginTransaction(ctx context.Context) error {
	if r.tx != nil {
		return model.ErrTransactionActive
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	r.tx = tx
	return nil
}

// CommitTransaction commits the active transaction. A commit failure rolls
// the transaction back before the error is returned.
func (r *Repository[T, PT]) CommitTransaction() error {
	if r.tx == nil {
		return model.ErrNoActiveTransaction
	}
	tx := r.tx
	r.tx = nil
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository[T, PT]) RollbackTransaction() error {
	if r.tx == nil {
		return model.ErrNoActiveTransaction
	}
	tx := r.tx
	r.tx = nil
	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether this repository has an active transaction.
func (r *Repository[T, PT]) InTransaction() bool { return r.tx != nil }

func stampCreate(base *model.BaseEntity) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
}

func stampUpdate(base *model.BaseEntity) {
	now := time.Now().UTC()
	base.UpdatedAt = &now
}
