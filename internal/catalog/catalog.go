// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package catalog manages the books and categories of the library.
//
// Reading the catalog requires any signed-in principal. Changing it requires
// the ADMINISTRATOR or LIBRARIAN role.
package catalog

import "time"

// Category groups books by subject (e.g. "Science Fiction").
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Book is one title held by the library.
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	PublishedYear int       `json:"publishedYear"`
	Description   *string   `json:"description"`
	CategoryID    *int64    `json:"categoryId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BookFilter narrows a book listing.
type BookFilter struct {
	Query      string // Case-insensitive match on title or author
	CategoryID *int64
}

// Field names for validation
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldISBN          = "isbn"
	FieldPublishedYear = "publishedYear"
	FieldDescription   = "description"
	FieldCategoryID    = "categoryId"
	FieldName          = "name"
)

// Length limits, matching the column definitions.
const (
	MaxTitleLength        = 255
	MaxAuthorLength       = 255
	MaxDescriptionLength  = 4000
	MaxCategoryNameLength = 100

	// MinPublishedYear is roughly the first printed book.
	MinPublishedYear = 1450
)
