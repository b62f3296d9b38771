package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/memoir"
)

var (
	ErrNotEditing      = errors.New("no edit in progress for this memory")
	ErrNoPendingDelete = errors.New("no delete pending for this memory")
)

// View is the stateful browsing surface over the library: current filters,
// sort order, and page, plus the edit and two-step delete interactions.
// Changing any filter, the order, or the page size snaps back to page one so
// the visible window always starts at the top of the new result set.
type View struct {
	mu       sync.Mutex
	lib      *library.Library
	filters  Filters
	order    Order
	page     int
	pageSize int

	editingID       string
	pendingDeleteID string
}

func NewView(lib *library.Library, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &View{lib: lib, order: OrderNewest, page: 1, pageSize: pageSize}
}

func (v *View) SetFilters(f Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if f != v.filters {
		v.page = 1
	}
	v.filters = f
}

func (v *View) SetOrder(order Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch order {
	case OrderNewest, OrderOldest, OrderChronological:
	default:
		order = OrderNewest
	}
	if order != v.order {
		v.page = 1
	}
	v.order = order
}

func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page <= 0 {
		page = 1
	}
	v.page = page
}

func (v *View) SetPageSize(size int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if size <= 0 {
		return
	}
	if size != v.pageSize {
		v.page = 1
	}
	v.pageSize = size
}

func (v *View) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

func (v *View) Order() Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.order
}

// Current applies the view's filters, order, and pagination to the library's
// full collection.
func (v *View) Current() Page {
	all := v.lib.Memories()

	v.mu.Lock()
	filters, order, page, size := v.filters, v.order, v.page, v.pageSize
	v.mu.Unlock()

	return Paginate(Sort(Filter(all, filters), order), page, size)
}

// Aggregates summarizes the full collection, ignoring active filters.
func (v *View) Aggregates() Aggregates {
	return Aggregate(v.lib.Memories())
}

// BeginEdit opens one memory for editing and returns a working copy. Opening
// an edit on a second memory abandons the first.
func (v *View) BeginEdit(id string) (memoir.Memory, error) {
	m, err := v.lib.MemoryByID(id)
	if err != nil {
		return memoir.Memory{}, err
	}
	v.mu.Lock()
	v.editingID = id
	v.mu.Unlock()
	return m, nil
}

// SaveEdit wholly replaces the stored record with the edited copy. The
// creation timestamp is preserved by the library.
func (v *View) SaveEdit(ctx context.Context, m memoir.Memory) error {
	v.mu.Lock()
	if v.editingID != m.ID {
		v.mu.Unlock()
		return ErrNotEditing
	}
	v.editingID = ""
	v.mu.Unlock()

	return v.lib.UpdateMemory(ctx, m)
}

func (v *View) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editingID = ""
}

func (v *View) EditingID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editingID
}

// RequestDelete arms the two-step delete for one memory. If that memory is
// mid-edit, the edit is abandoned so a stale working copy cannot be saved
// over a record the user has asked to remove.
func (v *View) RequestDelete(id string) error {
	if _, err := v.lib.MemoryByID(id); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingDeleteID = id
	if v.editingID == id {
		v.editingID = ""
	}
	return nil
}

// ConfirmDelete removes the memory armed by RequestDelete.
func (v *View) ConfirmDelete(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.pendingDeleteID != id {
		v.mu.Unlock()
		return ErrNoPendingDelete
	}
	v.pendingDeleteID = ""
	v.mu.Unlock()

	return v.lib.DeleteMemory(ctx, id)
}

func (v *View) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingDeleteID = ""
}

func (v *View) PendingDeleteID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pendingDeleteID
}
