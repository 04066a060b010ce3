// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// Repository defines the data access contract for the catalog.
//
// Lookups of a missing row return [apperr.NotFound]; unique violations
// return [apperr.Conflict].
type Repository interface {
	ListBooks(ctx context.Context, filter BookFilter, limit, offset int) ([]*Book, int, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	CreateBook(ctx context.Context, book *Book) error
	UpdateBook(ctx context.Context, book *Book) error
	DeleteBook(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id int64) error
}
