package listing

import (
	"fmt"
	"time"
)

// Mode is the screen a list controller is showing.
type Mode string

const (
	ModeList Mode = "list"
	ModeView Mode = "view"
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
	ModeSend Mode = "send"
)

const (
	// BannerTTL is how long a success or error banner stays visible.
	BannerTTL = 5 * time.Second
	// SaveRedirectDelay lets the success banner render before returning to the list.
	SaveRedirectDelay = 1500 * time.Millisecond
)

// BannerKind distinguishes success from failure banners.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is a transient message shown above the table.
type Banner struct {
	Kind      BannerKind
	Message   string
	ExpiresAt time.Time
}

// Confirmation is a pending destructive action awaiting a yes/no answer.
type Confirmation struct {
	Action string
	ID     string
	Prompt string
}

// ActionID keys per-row loading state, e.g. ActionID("toggle", "int_1") = "toggle-int_1".
func ActionID(action, id string) string {
	return action + "-" + id
}

// Controller is the state machine behind one admin table: list, view, add, edit and send
// screens plus search, filters, sort, pagination, per-row loading and banners.
type Controller struct {
	Resource    string
	Mode        Mode
	Selected    Row
	Breadcrumbs []string

	Search   string
	Filters  map[string]string
	Sort     SortState
	Page     int
	PageSize int

	loading map[string]bool
	banners []Banner
	confirm *Confirmation
	now     func() time.Time
}

// NewController starts in list mode on page 1.
func NewController(resource string) *Controller {
	return &Controller{
		Resource:    resource,
		Mode:        ModeList,
		Breadcrumbs: []string{resource},
		Filters:     map[string]string{},
		Page:        1,
		PageSize:    DefaultPageSize,
		loading:     map[string]bool{},
		now:         time.Now,
	}
}

// SetClock replaces the clock used for banner expiry.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Query is the list request for the current state.
func (c *Controller) Query() Query {
	filters := make(map[string]string, len(c.Filters))
	for k, v := range c.Filters {
		filters[k] = v
	}
	return Query{Search: c.Search, Filters: filters, Sort: c.Sort, Page: c.Page, Size: c.PageSize}
}

// SetSearch updates the search term, resets to page 1 and returns the debounce to apply
// before querying.
func (c *Controller) SetSearch(term string) time.Duration {
	c.Search = term
	c.Page = 1
	return DebounceDelay(term)
}

// SetFilter sets (or clears, with "" or "all") one filter and resets to page 1.
func (c *Controller) SetFilter(key, value string) time.Duration {
	if value == "" || value == "all" {
		delete(c.Filters, key)
	} else {
		c.Filters[key] = value
	}
	c.Page = 1
	return DebounceDelay(c.Search)
}

// ToggleSort applies a header click.
func (c *Controller) ToggleSort(column string) {
	c.Sort = c.Sort.Toggle(column)
}

// SetPage moves to page, clamped to the available pages.
func (c *Controller) SetPage(page, totalPages int) {
	c.Page = ClampPage(page, totalPages)
}

// View opens the read-only detail of row; label is pushed onto the breadcrumb.
func (c *Controller) View(row Row, label string) {
	c.Mode = ModeView
	c.Selected = row
	c.Breadcrumbs = []string{c.Resource, label}
}

// Add opens an empty form.
func (c *Controller) Add() {
	c.Mode = ModeAdd
	c.Selected = nil
	c.Breadcrumbs = []string{c.Resource, "Add"}
}

// Edit opens the form bound to row.
func (c *Controller) Edit(row Row, label string) {
	c.Mode = ModeEdit
	c.Selected = row
	c.Breadcrumbs = []string{c.Resource, "Edit " + label}
}

// Send opens the broadcast screen for a notification template.
func (c *Controller) Send(row Row, label string) {
	c.Mode = ModeSend
	c.Selected = row
	c.Breadcrumbs = []string{c.Resource, "Send " + label}
}

// Back returns to the list (cancel or breadcrumb navigation).
func (c *Controller) Back() {
	c.Mode = ModeList
	c.Selected = nil
	c.Breadcrumbs = []string{c.Resource}
}

// Saved records a successful save and returns how long to wait before calling Back.
func (c *Controller) Saved(message string) time.Duration {
	c.Notify(BannerSuccess, message)
	return SaveRedirectDelay
}

// StartAction marks action id as loading. It returns false when that action is already
// running, so a double click does not fire twice.
func (c *Controller) StartAction(id string) bool {
	if c.loading[id] {
		return false
	}
	c.loading[id] = true
	return true
}

// IsLoading reports whether action id is in flight.
func (c *Controller) IsLoading(id string) bool {
	return c.loading[id]
}

// FinishAction clears the loading flag and raises a banner for the outcome.
func (c *Controller) FinishAction(id string, err error, success string) {
	delete(c.loading, id)
	if err != nil {
		c.Notify(BannerError, err.Error())
		return
	}
	c.Notify(BannerSuccess, success)
}

// Notify adds a banner that expires after BannerTTL.
func (c *Controller) Notify(kind BannerKind, message string) {
	c.banners = append(c.banners, Banner{Kind: kind, Message: message, ExpiresAt: c.now().Add(BannerTTL)})
}

// Banners returns the banners still visible and drops expired ones.
func (c *Controller) Banners() []Banner {
	now := c.now()
	live := c.banners[:0]
	for _, b := range c.banners {
		if now.Before(b.ExpiresAt) {
			live = append(live, b)
		}
	}
	c.banners = live
	out := make([]Banner, len(live))
	copy(out, live)
	return out
}

// RequestConfirm asks before a destructive action on the record named label.
func (c *Controller) RequestConfirm(action, id, label string) *Confirmation {
	c.confirm = &Confirmation{
		Action: action,
		ID:     id,
		Prompt: fmt.Sprintf("Are you sure you want to %s %q? This cannot be undone.", action, label),
	}
	return c.confirm
}

// PendingConfirm returns the open confirmation, if any.
func (c *Controller) PendingConfirm() *Confirmation {
	return c.confirm
}

// ResolveConfirm closes the prompt. It returns the confirmed action, or nil when declined.
func (c *Controller) ResolveConfirm(yes bool) *Confirmation {
	pending := c.confirm
	c.confirm = nil
	if !yes {
		return nil
	}
	return pending
}
