package stock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
)

// memStore is an in-memory backing store for the stock repositories.
type memStore struct {
	mu            sync.Mutex
	items         map[uuid.UUID]stock.StockItem
	restocks      map[uuid.UUID]stock.RestockRecord
	logs          map[uuid.UUID]stock.IssueLog
	notifications map[uuid.UUID]stock.Notification
	inwards       map[uuid.UUID]procurement.InwardReceipt
	requests      map[uuid.UUID]procurement.LabRequest

	// staleOnce makes the next SaveWithLock fail with a version conflict.
	staleOnce bool
}

func newMemStore() *memStore {
	return &memStore{
		items:         make(map[uuid.UUID]stock.StockItem),
		restocks:      make(map[uuid.UUID]stock.RestockRecord),
		logs:          make(map[uuid.UUID]stock.IssueLog),
		notifications: make(map[uuid.UUID]stock.Notification),
		inwards:       make(map[uuid.UUID]procurement.InwardReceipt),
		requests:      make(map[uuid.UUID]procurement.LabRequest),
	}
}

func (m *memStore) repositories() Repositories {
	return Repositories{
		Items:         memItems{m},
		Restocks:      memRestocks{m},
		Logs:          memLogs{m},
		Notifications: memNotifications{m},
		Inwards:       memInwards{m},
		Requests:      memRequests{m},
	}
}

func (m *memStore) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(memItems{m}, memRestocks{m}, memLogs{m}, memNotifications{m}, memRequests{m})
}

func (m *memStore) notificationTypes(itemID uuid.UUID) []stock.NotificationType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []stock.NotificationType
	for _, n := range m.notifications {
		if n.ItemID == itemID {
			out = append(out, n.Type)
		}
	}
	return out
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// --- items ---

type memItems struct{ m *memStore }

func (r memItems) FindByID(_ context.Context, c stock.Category, id uuid.UUID) (*stock.StockItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	item, ok := r.m.items[id]
	if !ok || item.Category != c {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

func (r memItems) find(c stock.Category, match func(stock.StockItem) bool) (*stock.StockItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, item := range r.m.items {
		if item.Category == c && match(item) {
			return &item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memItems) FindByCode(_ context.Context, c stock.Category, code string) (*stock.StockItem, error) {
	return r.find(c, func(i stock.StockItem) bool { return i.ItemCode == code })
}

func (r memItems) FindByName(_ context.Context, c stock.Category, name string) (*stock.StockItem, error) {
	return r.find(c, func(i stock.StockItem) bool { return i.ItemName == name })
}

func (r memItems) FindByIDs(_ context.Context, ids []uuid.UUID) ([]stock.StockItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.StockItem
	for _, id := range ids {
		if item, ok := r.m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r memItems) filter(f stock.ItemFilter) []stock.StockItem {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.StockItem
	for _, item := range r.m.items {
		if item.Category != f.Category || !contains(item.ItemCode, f.ItemCode) || !contains(item.ItemName, f.ItemName) {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out
}

func (r memItems) FindAll(_ context.Context, f stock.ItemFilter) ([]stock.StockItem, error) {
	return r.filter(f), nil
}

func (r memItems) Count(_ context.Context, f stock.ItemFilter) (int64, error) {
	return int64(len(r.filter(f))), nil
}

func (r memItems) ListByCategory(_ context.Context, c stock.Category) ([]stock.StockItem, error) {
	return r.filter(stock.ItemFilter{Category: c}), nil
}

func (r memItems) CodesWithPrefix(_ context.Context, c stock.Category, prefix string) ([]string, error) {
	var codes []string
	for _, item := range r.filter(stock.ItemFilter{Category: c}) {
		if strings.HasPrefix(item.ItemCode, prefix+"-") {
			codes = append(codes, item.ItemCode)
		}
	}
	return codes, nil
}

func (r memItems) Save(_ context.Context, item *stock.StockItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.items {
		if existing.Category == item.Category && existing.ItemCode == item.ItemCode && existing.ID != item.ID {
			return shared.ErrAlreadyExists
		}
	}
	stored := *item
	stored.ClearDomainEvents()
	r.m.items[item.ID] = stored
	return nil
}

func (r memItems) SaveWithLock(_ context.Context, item *stock.StockItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.items[item.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if r.m.staleOnce {
		r.m.staleOnce = false
		stored.Version++
		r.m.items[item.ID] = stored
	}
	if stored.Version != item.Version {
		return shared.ErrOptimisticLock
	}
	item.IncrementVersion()
	stored = *item
	stored.ClearDomainEvents()
	r.m.items[item.ID] = stored
	return nil
}

func (r memItems) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.items, id)
	return nil
}

// --- restocks ---

type memRestocks struct{ m *memStore }

func (r memRestocks) FindByID(_ context.Context, c stock.Category, id uuid.UUID) (*stock.RestockRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rec, ok := r.m.restocks[id]
	if !ok || rec.Category != c {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (r memRestocks) FindByItem(_ context.Context, itemID uuid.UUID) ([]stock.RestockRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.RestockRecord
	for _, rec := range r.m.restocks {
		if rec.ItemID == itemID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r memRestocks) FindAll(_ context.Context, f stock.RestockFilter) ([]stock.RestockRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.RestockRecord
	for _, rec := range r.m.restocks {
		if rec.Category == f.Category && contains(rec.Location, f.Location) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memRestocks) Count(ctx context.Context, f stock.RestockFilter) (int64, error) {
	all, _ := r.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (r memRestocks) FindWithExpiry(_ context.Context, categories []stock.Category) ([]stock.RestockRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.RestockRecord
	for _, rec := range r.m.restocks {
		for _, c := range categories {
			if rec.Category == c && rec.ExpirationDate != nil {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (r memRestocks) Save(_ context.Context, rec *stock.RestockRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.restocks[rec.ID] = *rec
	return nil
}

func (r memRestocks) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.restocks, id)
	return nil
}

func (r memRestocks) DeleteByItem(_ context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var ids []uuid.UUID
	for id, rec := range r.m.restocks {
		if rec.ItemID == itemID {
			ids = append(ids, id)
			delete(r.m.restocks, id)
		}
	}
	return ids, nil
}

// --- logs ---

type memLogs struct{ m *memStore }

func (r memLogs) FindByID(_ context.Context, c stock.Category, id uuid.UUID) (*stock.IssueLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.logs[id]
	if !ok || l.Category != c {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (r memLogs) FindAll(_ context.Context, f stock.LogFilter) ([]stock.IssueLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.IssueLog
	for _, l := range r.m.logs {
		if l.Category == f.Category && contains(l.UserEmail, f.UserEmail) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateIssued.After(out[j].DateIssued) })
	return out, nil
}

func (r memLogs) Count(ctx context.Context, f stock.LogFilter) (int64, error) {
	all, _ := r.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (r memLogs) Save(_ context.Context, l *stock.IssueLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.logs[l.ID] = *l
	return nil
}

func (r memLogs) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.logs, id)
	return nil
}

func (r memLogs) DeleteByItem(_ context.Context, itemID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, l := range r.m.logs {
		if l.ItemID == itemID {
			delete(r.m.logs, id)
		}
	}
	return nil
}

// --- notifications ---

type memNotifications struct{ m *memStore }

func (r memNotifications) FindByID(_ context.Context, id uuid.UUID) (*stock.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &n, nil
}

func (r memNotifications) FindOne(_ context.Context, itemID uuid.UUID, t stock.NotificationType) (*stock.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, n := range r.m.notifications {
		if n.ItemID == itemID && n.Type == t {
			return &n, nil
		}
	}
	return nil, shared.ErrNotFound
}

func matchesNotification(n stock.Notification, f stock.NotificationFilter) bool {
	return (f.ItemID == nil || n.ItemID == *f.ItemID) &&
		(f.Type == "" || n.Type == f.Type) &&
		(f.Category == "" || n.Category == f.Category)
}

func (r memNotifications) FindAll(_ context.Context, f stock.NotificationFilter) ([]stock.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []stock.Notification
	for _, n := range r.m.notifications {
		if matchesNotification(n, f) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memNotifications) Create(_ context.Context, n *stock.Notification) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.notifications {
		if existing.ItemID == n.ItemID && existing.Type == n.Type {
			return false, nil
		}
	}
	r.m.notifications[n.ID] = *n
	return true, nil
}

func (r memNotifications) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.notifications[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.m.notifications, id)
	return nil
}

func (r memNotifications) DeleteByItemAndType(_ context.Context, itemID uuid.UUID, t stock.NotificationType) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, existing := range r.m.notifications {
		if existing.ItemID == itemID && existing.Type == t {
			delete(r.m.notifications, id)
			n++
		}
	}
	return n, nil
}

func (r memNotifications) DeleteMany(_ context.Context, f stock.NotificationFilter) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, existing := range r.m.notifications {
		if matchesNotification(existing, f) {
			delete(r.m.notifications, id)
			n++
		}
	}
	return n, nil
}

func (r memNotifications) DeleteByItems(_ context.Context, itemIDs []uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, existing := range r.m.notifications {
		for _, itemID := range itemIDs {
			if existing.ItemID == itemID {
				delete(r.m.notifications, id)
			}
		}
	}
	return nil
}

// --- procurement ---

type memInwards struct{ m *memStore }

func (r memInwards) FindByID(_ context.Context, id uuid.UUID) (*procurement.InwardReceipt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	in, ok := r.m.inwards[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &in, nil
}

func (r memInwards) FindByCode(_ context.Context, code string) (*procurement.InwardReceipt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, in := range r.m.inwards {
		if in.InwardCode == code {
			return &in, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memInwards) FindByIDs(_ context.Context, ids []uuid.UUID) ([]procurement.InwardReceipt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []procurement.InwardReceipt
	for _, id := range ids {
		if in, ok := r.m.inwards[id]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

func (r memInwards) FindAll(_ context.Context, _ procurement.InwardFilter) ([]procurement.InwardReceipt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []procurement.InwardReceipt
	for _, in := range r.m.inwards {
		out = append(out, in)
	}
	return out, nil
}

func (r memInwards) Count(ctx context.Context, f procurement.InwardFilter) (int64, error) {
	all, _ := r.FindAll(ctx, f)
	return int64(len(all)), nil
}

func (r memInwards) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r memInwards) Save(_ context.Context, in *procurement.InwardReceipt) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.inwards[in.ID] = *in
	return nil
}

type memRequests struct{ m *memStore }

func (r memRequests) FindByID(_ context.Context, id uuid.UUID) (*procurement.LabRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &req, nil
}

func (r memRequests) FindByIDs(_ context.Context, model stock.RequestModel, ids []uuid.UUID) ([]procurement.LabRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []procurement.LabRequest
	for _, id := range ids {
		if req, ok := r.m.requests[id]; ok && req.Model == model {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r memRequests) CodesWithPrefix(_ context.Context, prefix string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []string
	for _, req := range r.m.requests {
		if strings.HasPrefix(req.Code, prefix) {
			out = append(out, req.Code)
		}
	}
	return out, nil
}

func (r memRequests) Save(_ context.Context, req *procurement.LabRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.requests[req.ID] = *req
	return nil
}

func (r memRequests) FindAll(_ context.Context, filter procurement.LabRequestFilter) ([]procurement.LabRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []procurement.LabRequest
	for _, req := range r.m.requests {
		if (filter.Model == stock.RequestModelNone || req.Model == filter.Model) &&
			(filter.Status == "" || req.Status == filter.Status) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r memRequests) Count(ctx context.Context, filter procurement.LabRequestFilter) (int64, error) {
	out, _ := r.FindAll(ctx, filter)
	return int64(len(out)), nil
}

func (r memRequests) UpdateStatus(_ context.Context, req *procurement.LabRequest, from procurement.RequestStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.requests[req.ID]
	if !ok || stored.Status != from {
		return shared.ErrConcurrencyConflict
	}
	r.m.requests[req.ID] = *req
	return nil
}
