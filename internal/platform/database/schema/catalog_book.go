// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns queried by the PostgreSQL repositories.
package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table         string
	ID            string
	Title         string
	Author        string
	ISBN          string
	PublishedYear string
	Description   string
	CategoryID    string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:         "catalog.book",
	ID:            "id",
	Title:         "title",
	Author:        "author",
	ISBN:          "isbn",
	PublishedYear: "publishedyear",
	Description:   "description",
	CategoryID:    "categoryid",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
}

// SelectColumns returns the columns read into a Book, in scan order.
func (t CatalogBookTable) SelectColumns() []string {
	return []string{
		t.ID, t.Title, t.Author, t.ISBN, t.PublishedYear,
		t.Description, t.CategoryID, t.CreatedAt, t.UpdatedAt,
	}
}
