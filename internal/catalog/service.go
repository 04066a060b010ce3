// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/elib/internal/platform/ctxutil"
	"github.com/taibuivan/elib/internal/platform/validate"
	"github.com/taibuivan/elib/pkg/clock"
	"github.com/taibuivan/elib/pkg/pointer"
	"github.com/taibuivan/elib/pkg/slug"
)

// Service implements the catalog use cases.
type Service struct {
	repo  Repository
	clock clock.Clock
}

// NewService constructs a catalog [Service].
func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// # Books

func (service *Service) ListBooks(context context.Context, filter BookFilter, limit, offset int) ([]*Book, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.ListBooks(context, filter, limit, offset)
}

func (service *Service) GetBook(context context.Context, id int64) (*Book, error) {
	return service.repo.GetBook(context, id)
}

/*
CreateBook validates and stores a new book.

Returns:
  - error: VALIDATION_ERROR, CONFLICT on a duplicate ISBN, UNPROCESSABLE on an unknown category
*/
func (service *Service) CreateBook(context context.Context, book *Book) error {
	service.normaliseBook(book)

	if err := service.validateBook(book); err != nil {
		return err
	}

	if err := service.repo.CreateBook(context, book); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_created",
		slog.Int64("book_id", book.ID),
		slog.String("isbn", book.ISBN),
	)
	return nil
}

// UpdateBook replaces every editable field of the book with the given id.
func (service *Service) UpdateBook(context context.Context, id int64, book *Book) error {
	book.ID = id
	service.normaliseBook(book)

	if err := service.validateBook(book); err != nil {
		return err
	}

	if err := service.repo.UpdateBook(context, book); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "book_updated", slog.Int64("book_id", book.ID))
	return nil
}

func (service *Service) DeleteBook(context context.Context, id int64) error {
	if err := service.repo.DeleteBook(context, id); err != nil {
		return err
	}

	ctxutil.GetLogger(context).WarnContext(context, "book_deleted", slog.Int64("book_id", id))
	return nil
}

func (service *Service) normaliseBook(book *Book) {
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	book.ISBN = normaliseISBN(book.ISBN)

	description := strings.TrimSpace(pointer.Val(book.Description))
	book.Description = nil
	if description != "" {
		book.Description = pointer.To(description)
	}
}

func (service *Service) validateBook(book *Book) error {
	validator := &validate.Validator{}

	validator.
		Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, MaxTitleLength).
		Required(FieldAuthor, book.Author).MaxLen(FieldAuthor, book.Author, MaxAuthorLength).
		Required(FieldISBN, book.ISBN).ISBN(FieldISBN, book.ISBN).
		Range(FieldPublishedYear, book.PublishedYear, MinPublishedYear, service.clock.Now().Year()+1)

	if book.Description != nil {
		validator.MaxLen(FieldDescription, *book.Description, MaxDescriptionLength)
	}
	if book.CategoryID != nil {
		validator.Positive(FieldCategoryID, *book.CategoryID)
	}

	return validator.Err()
}

// normaliseISBN strips separators so "978-0-13-468599-1" and "9780134685991" compare equal.
func normaliseISBN(isbn string) string {
	isbn = strings.ToUpper(strings.TrimSpace(isbn))
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// # Categories

func (service *Service) ListCategories(context context.Context) ([]*Category, error) {
	return service.repo.ListCategories(context)
}

// CreateCategory stores a new category and derives its slug from the name.
func (service *Service) CreateCategory(context context.Context, category *Category) error {
	if err := prepareCategory(category); err != nil {
		return err
	}

	if err := service.repo.CreateCategory(context, category); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "category_created",
		slog.Int64("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return nil
}

// UpdateCategory renames the category identified by category.ID.
func (service *Service) UpdateCategory(context context.Context, category *Category) error {
	if category.ID <= 0 {
		return validate.RequiredError(FieldID, "This field is required")
	}

	if err := prepareCategory(category); err != nil {
		return err
	}

	if err := service.repo.UpdateCategory(context, category); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "category_updated", slog.Int64("category_id", category.ID))
	return nil
}

func (service *Service) DeleteCategory(context context.Context, id int64) error {
	if err := service.repo.DeleteCategory(context, id); err != nil {
		return err
	}

	ctxutil.GetLogger(context).WarnContext(context, "category_deleted", slog.Int64("category_id", id))
	return nil
}

func prepareCategory(category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = slug.From(category.Name)

	validator := &validate.Validator{}
	validator.
		Required(FieldName, category.Name).
		MaxLen(FieldName, category.Name, MaxCategoryNameLength).
		Custom(FieldName, category.Name != "" && category.Slug == "", "Must contain at least one letter or digit")

	return validator.Err()
}
