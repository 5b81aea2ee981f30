package repository

import (
	"context"
	"errors"
	"fmt"

	"vidasmart/inventory-service/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// maxCategoryDepth ограничивает рекурсию на случай уже испорченных данных
	maxCategoryDepth = 64
	// categoryTreeLockKey - ключ pg_advisory_xact_lock для перестроек дерева
	categoryTreeLockKey int64 = 0x7669646163617473
)

// querier - общее у пула и транзакции pgx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type categoryRepository struct {
	db *pgxpool.Pool // Пул соединений с PostgreSQL для работы с категориями
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию в PostgreSQL
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, name, icon, color, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.Name, category.Icon, category.Color, category.ParentID, category.CreatedAt)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByID получает категорию по ID из PostgreSQL
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	query := `SELECT id, name, icon, color, parent_id, created_at FROM categories WHERE id = $1`

	var category entity.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Icon,
		&category.Color,
		&category.ParentID,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}

	return &category, nil
}

// GetAll получает все категории отсортированные по имени
// Результат кешируется в Redis через service layer
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	query := `SELECT id, name, icon, color, parent_id, created_at FROM categories ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Icon,
			&category.Color,
			&category.ParentID,
			&category.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	// Проверяем ошибки итерации
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Update обновляет категорию. Смена родителя проверяется на цикл под
// транзакционной advisory-блокировкой: параллельные A->B и B->A выполняются
// по очереди, и вторая видит уже записанного родителя.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if category.ParentID != nil {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryTreeLockKey); err != nil {
				return fmt.Errorf("failed to lock category tree: %w", err)
			}

			ancestors, err := ancestorIDs(ctx, tx, *category.ParentID)
			if err != nil {
				return err
			}
			if len(ancestors) == 0 {
				return ErrParentNotFound
			}
			for _, ancestor := range ancestors {
				if ancestor == category.ID {
					return ErrCategoryCycle
				}
			}
		}

		query := `
			UPDATE categories
			SET name = $1, icon = $2, color = $3, parent_id = $4
			WHERE id = $5
		`
		result, err := tx.Exec(ctx, query,
			category.Name, category.Icon, category.Color, category.ParentID, category.ID)
		if err != nil {
			if translated := translateError(err); translated != err {
				return translated
			}
			return fmt.Errorf("failed to update category: %w", err)
		}

		if result.RowsAffected() == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// Delete удаляет категорию без товаров и подкатегорий
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Архивные товары тоже считаются: на них ссылается история продаж
	var links int
	checkQuery := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE category_id = $1) +
			(SELECT COUNT(*) FROM categories WHERE parent_id = $1)
	`
	if err := r.db.QueryRow(ctx, checkQuery, id).Scan(&links); err != nil {
		return fmt.Errorf("failed to check category links: %w", err)
	}

	if links > 0 {
		return ErrCategoryHasLinks
	}

	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		// Товар мог появиться между проверкой и удалением
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrCategoryHasLinks
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// AncestorIDs возвращает id начиная с самой категории и вверх до корня.
// Пустой результат означает, что категории нет.
func (r *categoryRepository) AncestorIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return ancestorIDs(ctx, r.db, id)
}

func ancestorIDs(ctx context.Context, q querier, id uuid.UUID) ([]uuid.UUID, error) {
	query := `
		WITH RECURSIVE ancestors AS (
			SELECT id, parent_id, 1 AS depth
			FROM categories
			WHERE id = $1
			UNION ALL
			SELECT c.id, c.parent_id, a.depth + 1
			FROM categories c
			JOIN ancestors a ON c.id = a.parent_id
			WHERE a.depth < $2
		)
		SELECT id FROM ancestors ORDER BY depth
	`

	rows, err := q.Query(ctx, query, id, maxCategoryDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to walk category ancestors: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var ancestorID uuid.UUID
		if err := rows.Scan(&ancestorID); err != nil {
			return nil, fmt.Errorf("failed to scan category ancestor: %w", err)
		}
		ids = append(ids, ancestorID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category ancestors: %w", err)
	}

	return ids, nil
}
