// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/elib/internal/platform/apperr"
	"github.com/taibuivan/elib/internal/platform/dberr"
)

// memoryRepository is an in-memory [Repository] with the same error contract as PostgreSQL.
type memoryRepository struct {
	mu         sync.Mutex
	books      map[int64]*Book
	categories map[int64]*Category
	nextID     int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		books:      make(map[int64]*Book),
		categories: make(map[int64]*Category),
	}
}

func (repository *memoryRepository) id() int64 {
	repository.nextID++
	return repository.nextID
}

func (repository *memoryRepository) ListBooks(_ context.Context, filter BookFilter, limit, offset int) ([]*Book, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	query := strings.ToLower(filter.Query)
	var matched []*Book
	for _, book := range repository.books {
		if query != "" && !strings.Contains(strings.ToLower(book.Title), query) && !strings.Contains(strings.ToLower(book.Author), query) {
			continue
		}
		if filter.CategoryID != nil && (book.CategoryID == nil || *book.CategoryID != *filter.CategoryID) {
			continue
		}
		clone := *book
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (repository *memoryRepository) GetBook(_ context.Context, id int64) (*Book, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	book, ok := repository.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *book
	return &clone, nil
}

func (repository *memoryRepository) CreateBook(_ context.Context, book *Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if err := repository.checkBook(book); err != nil {
		return err
	}

	book.ID = repository.id()
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt

	stored := *book
	repository.books[book.ID] = &stored
	return nil
}

func (repository *memoryRepository) UpdateBook(_ context.Context, book *Book) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	existing, ok := repository.books[book.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	if err := repository.checkBook(book); err != nil {
		return err
	}

	book.CreatedAt = existing.CreatedAt
	book.UpdatedAt = time.Now()

	stored := *book
	repository.books[book.ID] = &stored
	return nil
}

func (repository *memoryRepository) DeleteBook(_ context.Context, id int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.books[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repository.books, id)
	return nil
}

// checkBook mirrors the unique ISBN index and the category foreign key.
func (repository *memoryRepository) checkBook(book *Book) error {
	for _, other := range repository.books {
		if other.ID != book.ID && other.ISBN == book.ISBN {
			return apperr.Conflict("Resource already exists")
		}
	}
	if book.CategoryID != nil {
		if _, ok := repository.categories[*book.CategoryID]; !ok {
			return apperr.Unprocessable("Referenced resource does not exist")
		}
	}
	return nil
}

func (repository *memoryRepository) ListCategories(context.Context) ([]*Category, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var categories []*Category
	for _, category := range repository.categories {
		clone := *category
		categories = append(categories, &clone)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (repository *memoryRepository) CreateCategory(_ context.Context, category *Category) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, other := range repository.categories {
		if other.Slug == category.Slug {
			return apperr.Conflict("Resource already exists")
		}
	}

	category.ID = repository.id()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt

	stored := *category
	repository.categories[category.ID] = &stored
	return nil
}

func (repository *memoryRepository) UpdateCategory(_ context.Context, category *Category) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	existing, ok := repository.categories[category.ID]
	if !ok {
		return dberr.ErrNotFound
	}

	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()

	stored := *category
	repository.categories[category.ID] = &stored
	return nil
}

func (repository *memoryRepository) DeleteCategory(_ context.Context, id int64) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.categories[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repository.categories, id)

	for _, book := range repository.books {
		if book.CategoryID != nil && *book.CategoryID == id {
			book.CategoryID = nil
		}
	}
	return nil
}
