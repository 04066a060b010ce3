// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/elib/internal/platform/database/schema"
	"github.com/taibuivan/elib/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over the catalog schema.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Books

var bookColumns = strings.Join(schema.CatalogBook.SelectColumns(), ", ")

func (repository *PostgresRepository) ListBooks(context context.Context, filter BookFilter, limit, offset int) ([]*Book, int, error) {
	book := schema.CatalogBook

	where := []string{book.DeletedAt + " IS NULL"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, containsPattern(filter.Query))
		placeholder := "$" + strconv.Itoa(len(args))
		where = append(where, fmt.Sprintf(`(%s ILIKE %s ESCAPE '\' OR %s ILIKE %s ESCAPE '\')`, book.Title, placeholder, book.Author, placeholder))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("%s = $%d", book.CategoryID, len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, book.Table, whereClause)
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s ASC, %s ASC
		LIMIT $%d OFFSET $%d
	`,
		bookColumns, book.Table, whereClause, book.Title, book.ID, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}

	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "scan_books")
	}

	return books, total, nil
}

func (repository *PostgresRepository) GetBook(context context.Context, id int64) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL`,
		bookColumns, schema.CatalogBook.Table, schema.CatalogBook.ID, schema.CatalogBook.DeletedAt,
	)

	rows, err := repository.db.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_book")
	}

	book, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		return nil, dberr.Wrap(err, "get_book")
	}
	return book, nil
}

func (repository *PostgresRepository) CreateBook(context context.Context, book *Book) error {
	table := schema.CatalogBook
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s, %s
	`,
		table.Table, table.Title, table.Author, table.ISBN, table.PublishedYear, table.Description, table.CategoryID,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		book.Title, book.Author, book.ISBN, book.PublishedYear, book.Description, book.CategoryID,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	return dberr.Wrap(err, "create_book")
}

func (repository *PostgresRepository) UpdateBook(context context.Context, book *Book) error {
	table := schema.CatalogBook
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s, %s
	`,
		table.Table, table.Title, table.Author, table.ISBN, table.PublishedYear, table.Description, table.CategoryID,
		table.UpdatedAt, table.ID, table.DeletedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		book.ID, book.Title, book.Author, book.ISBN, book.PublishedYear, book.Description, book.CategoryID,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	return dberr.Wrap(err, "update_book")
}

// DeleteBook soft-deletes the book.
func (repository *PostgresRepository) DeleteBook(context context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CatalogBook.Table, schema.CatalogBook.DeletedAt, schema.CatalogBook.ID, schema.CatalogBook.DeletedAt,
	)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanBook(row pgx.CollectableRow) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.ISBN, &book.PublishedYear,
		&book.Description, &book.CategoryID, &book.CreatedAt, &book.UpdatedAt,
	)
	return book, err
}

// # Categories

func (repository *PostgresRepository) ListCategories(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		strings.Join(schema.CatalogCategory.SelectColumns(), ", "),
		schema.CatalogCategory.Table, schema.CatalogCategory.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Category, error) {
		category := &Category{}
		err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
		return category, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_categories")
	}

	return categories, nil
}

func (repository *PostgresRepository) CreateCategory(context context.Context, category *Category) error {
	table := schema.CatalogCategory
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		RETURNING %s, %s, %s
	`,
		table.Table, table.Name, table.Slug,
		table.ID, table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, category.Name, category.Slug).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	return dberr.Wrap(err, "create_category")
}

func (repository *PostgresRepository) UpdateCategory(context context.Context, category *Category) error {
	table := schema.CatalogCategory
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		table.Table, table.Name, table.Slug, table.UpdatedAt, table.ID,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, category.ID, category.Name, category.Slug).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	return dberr.Wrap(err, "update_category")
}

// DeleteCategory removes the category. Its books become uncategorised.
func (repository *PostgresRepository) DeleteCategory(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogCategory.Table, schema.CatalogCategory.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_category")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching query literally anywhere.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
