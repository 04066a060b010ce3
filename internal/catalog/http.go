// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/elib/internal/platform/middleware"
	requestutil "github.com/taibuivan/elib/internal/platform/request"
	"github.com/taibuivan/elib/internal/platform/respond"
	"github.com/taibuivan/elib/internal/platform/sec"
	"github.com/taibuivan/elib/internal/platform/validate"
	"github.com/taibuivan/elib/pkg/pagination"
	"github.com/taibuivan/elib/pkg/pointer"
)

// Handler implements the catalog HTTP endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterBookRoutes mounts the book endpoints on router.
//
// # Endpoints
//   - GET    /             : Paginated list (?q=, ?categoryId=, ?page=, ?limit=)
//   - GET    /{id}         : Single book
//   - POST   /add-new      : Create (librarian)
//   - PUT    /{id}/edit    : Replace (librarian)
//   - DELETE /{id}/delete  : Soft delete (librarian)
func (handler *Handler) RegisterBookRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleAdministrator, sec.RoleLibrarian))

		staff.Post("/add-new", handler.createBook)
		staff.Put("/{id}/edit", handler.updateBook)
		staff.Delete("/{id}/delete", handler.deleteBook)
	})
}

// RegisterCategoryRoutes mounts the category endpoints on router.
//
// # Endpoints
//   - GET    /             : All categories
//   - POST   /add-new      : Create (librarian)
//   - PUT    /             : Rename, id in body (librarian)
//   - DELETE /{id}/delete  : Delete (librarian)
func (handler *Handler) RegisterCategoryRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listCategories)

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleAdministrator, sec.RoleLibrarian))

		staff.Post("/add-new", handler.createCategory)
		staff.Put("/", handler.updateCategory)
		staff.Delete("/{id}/delete", handler.deleteCategory)
	})
}

// # Books

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := BookFilter{Query: request.URL.Query().Get("q")}
	if raw := request.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID <= 0 {
			respond.Error(writer, request, validate.RequiredError(FieldCategoryID, "Must be a positive integer"))
			return
		}
		filter.CategoryID = pointer.To(categoryID)
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if books == nil {
		books = []*Book{}
	}
	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input Book
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateBook(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Book
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateBook(request.Context(), bookID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteBook(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Categories

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if categories == nil {
		categories = []*Category{}
	}
	respond.OK(writer, categories)
}

type categoryRequest struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category := &Category{Name: input.Name}
	if err := handler.service.CreateCategory(request.Context(), category); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The target is named in the body, not the path.
	if input.ID == nil {
		respond.Error(writer, request, validate.RequiredError(FieldID, "This field is required"))
		return
	}

	category := &Category{ID: *input.ID, Name: input.Name}
	if err := handler.service.UpdateCategory(request.Context(), category); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), categoryID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
