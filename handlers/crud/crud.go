// Package crud serves the admin table endpoints shared by every resource: list with the
// listing query contract, stats, get, create, update, delete and the status toggle.
package crud

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/listing"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// Service is what a resource service must offer to be mounted.
type Service[T any] interface {
	Name() string
	Search(ctx context.Context, term string, scope services.Scope) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, payload []byte) (*T, error)
	Update(ctx context.Context, id string, patch []byte) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
	ToggleActive(ctx context.Context, id string) (*T, error)
	Stats(ctx context.Context) (services.Stats, error)
}

// Handler mounts one resource.
type Handler[T any, PT services.RecordPtr[T]] struct {
	svc     Service[T]
	present func(*T) any
	sorter  *listing.Sorter
	// columns are the row fields a list query may filter on.
	columns map[string]bool
}

// Option customizes a Handler.
type Option[T any, PT services.RecordPtr[T]] func(*Handler[T, PT])

// WithPresenter replaces the JSON shape of every returned record (users hide their hash).
func WithPresenter[T any, PT services.RecordPtr[T]](present func(*T) any) Option[T, PT] {
	return func(h *Handler[T, PT]) { h.present = present }
}

// NewHandler creates a handler for svc.
func NewHandler[T any, PT services.RecordPtr[T]](svc Service[T], sorter *listing.Sorter, opts ...Option[T, PT]) *Handler[T, PT] {
	h := &Handler[T, PT]{
		svc:     svc,
		present: func(r *T) any { return r },
		sorter:  sorter,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.columns = services.Columns(h.present(new(T)))
	h.columns["status"] = true
	return h
}

// Mount registers the routes on group (already prefixed with /api/admin/<resource>).
func (h *Handler[T, PT]) Mount(group fiber.Router) {
	group.Get("/", h.List)
	group.Get("/stats", h.Stats)
	group.Get("/:id", h.Get)
	group.Post("/", h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Patch("/:id/toggle", h.Toggle)
}

// MountReadOnly registers list, stats and get only (logs).
func (h *Handler[T, PT]) MountReadOnly(group fiber.Router) {
	group.Get("/", h.List)
	group.Get("/stats", h.Stats)
	group.Get("/:id", h.Get)
}

// ParseQuery reads the list controller query from the request. Keys naming one of columns
// become equality filters; anything else (cache busters, unknown fields) is ignored.
func ParseQuery(c *fiber.Ctx, columns map[string]bool) listing.Query {
	q := listing.Query{
		Search:  c.Query("search", c.Query("q")),
		Filters: map[string]string{},
		Page:    c.QueryInt("page", 1),
		Size:    c.QueryInt("limit", listing.DefaultPageSize),
	}
	if col := strings.TrimSpace(c.Query("sort")); col != "" {
		dir := listing.Asc
		if strings.EqualFold(c.Query("order"), string(listing.Desc)) {
			dir = listing.Desc
		}
		q.Sort = listing.SortState{Column: col, Direction: dir}
	}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		if k := string(key); columns[k] {
			q.Filters[k] = string(value)
		}
	})
	return q
}

// List handles GET /api/admin/<resource>
func (h *Handler[T, PT]) List(c *fiber.Ctx) error {
	q := ParseQuery(c, h.columns)

	records, err := h.svc.Search(c.UserContext(), q.Search, services.ScopeAdmin)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	rows, err := h.rows(records)
	if err != nil {
		return err
	}

	rows = listing.Match(rows, q.Filters)
	h.sorter.Sort(rows, q.Sort)
	page := listing.Paginate(rows, q.Page, q.Size)

	return response.Paginated(c, page.Rows, response.PaginationMeta{
		CurrentPage: page.Page,
		PerPage:     page.PageSize,
		Total:       int64(page.Total),
		TotalPages:  page.TotalPages,
		PageWindow:  page.Window,
	})
}

// Stats handles GET /api/admin/<resource>/stats
func (h *Handler[T, PT]) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, stats)
}

// Get handles GET /api/admin/<resource>/:id
func (h *Handler[T, PT]) Get(c *fiber.Ctx) error {
	record, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Success(c, h.present(record))
}

// Create handles POST /api/admin/<resource>
func (h *Handler[T, PT]) Create(c *fiber.Ctx) error {
	record, err := h.svc.Create(c.UserContext(), c.Body())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Created(c, h.svc.Name()+" created successfully", h.present(record))
}

// Update handles PUT /api/admin/<resource>/:id
func (h *Handler[T, PT]) Update(c *fiber.Ctx) error {
	record, err := h.svc.Update(c.UserContext(), c.Params("id"), c.Body())
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, h.svc.Name()+" updated successfully", h.present(record))
}

// Delete handles DELETE /api/admin/<resource>/:id
func (h *Handler[T, PT]) Delete(c *fiber.Ctx) error {
	record, err := h.svc.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, h.svc.Name()+" deleted successfully", h.present(record))
}

// Toggle handles PATCH /api/admin/<resource>/:id/toggle
func (h *Handler[T, PT]) Toggle(c *fiber.Ctx) error {
	record, err := h.svc.ToggleActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.SuccessWithMessage(c, ToggleMessage(h.svc.Name(), PT(record).Active()), h.present(record))
}

// ToggleMessage is "<Resource> activated successfully" or "<Resource> deactivated successfully".
func ToggleMessage(resource string, active bool) string {
	if active {
		return resource + " activated successfully"
	}
	return resource + " deactivated successfully"
}

func (h *Handler[T, PT]) rows(records []T) ([]listing.Row, error) {
	out := make([]any, len(records))
	for i := range records {
		out[i] = h.present(&records[i])
	}
	return listing.ToRows(out)
}
