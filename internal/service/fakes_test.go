package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// memStore is an in-memory implementation of every store interface.
type memStore struct {
	mu       sync.Mutex
	seq      int
	partners map[string]*models.Partner
	keys     map[string]*models.APIKey
	products map[string]*models.Product
	orders   map[string]*models.Order

	failWith     error // returned by most calls when set
	failOrderTx  error // returned by CreateWithItems when set
	productReads int
	touched      map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		partners: map[string]*models.Partner{},
		keys:     map[string]*models.APIKey{},
		products: map[string]*models.Product{},
		orders:   map[string]*models.Order{},
		touched:  map[string]time.Time{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addPartner(id string, status models.PartnerStatus) *models.Partner {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Partner{ID: id, Name: "Partner " + id, Status: status, CreatedAt: time.Now()}
	m.partners[id] = p
	return p
}

func (m *memStore) addProduct(id, name string, price *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id] = &models.Product{ID: id, Name: name, Slug: id, Price: price, IsActive: true}
}

func (m *memStore) setPrice(id string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id].Price = &price
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// PartnerStore

func (m *memStore) Create(ctx context.Context, p *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, other := range m.partners {
		if (p.Email != nil && other.Email != nil && *p.Email == *other.Email) ||
			(p.Phone != nil && other.Phone != nil && *p.Phone == *other.Phone) {
			return utils.ErrConflict
		}
	}
	if p.ID == "" {
		p.ID = m.nextID("partner")
	}
	p.CreatedAt = time.Now()
	cp := *p
	m.partners[p.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*models.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.partners[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetByIdentifier(ctx context.Context, identifier string) (*models.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, p := range m.partners {
		if (p.Email != nil && *p.Email == identifier) || (p.Phone != nil && *p.Phone == identifier) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memStore) ExistsByContact(ctx context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	for _, p := range m.partners {
		if (email != "" && p.Email != nil && *p.Email == email) || (phone != "" && p.Phone != nil && *p.Phone == phone) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) List(ctx context.Context) ([]*models.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Partner{}
	for _, p := range m.partners {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id string, status models.PartnerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return utils.ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *memStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return utils.ErrNotFound
	}
	p.PasswordHash = &hash
	return nil
}

func (m *memStore) UpdatePayout(ctx context.Context, id string, d models.PayoutDetails) (*models.PayoutDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	p.PayoutDetails = d
	return &d, nil
}

func (m *memStore) Analytics(ctx context.Context, partnerID string) (*models.PartnerAnalytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var a models.PartnerAnalytics
	for _, o := range m.orders {
		if o.PartnerID == nil || *o.PartnerID != partnerID || o.Source != models.SourcePartner {
			continue
		}
		a.OrdersCount++
		a.TotalProfit += *o.PartnerProfit
		switch *o.PartnerPayoutStatus {
		case models.PayoutPending:
			a.PendingProfit += *o.PartnerProfit
		case models.PayoutPaid:
			a.PaidProfit += *o.PartnerProfit
		}
	}
	return &a, nil
}

// keyStore adapts memStore to APIKeyStore; the method sets overlap on Create.
type keyStore struct{ *memStore }

func (k keyStore) Create(ctx context.Context, key *models.APIKey) error {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	key.ID = m.nextID("key")
	key.IsActive = true
	key.CreatedAt = time.Now()
	cp := *key
	m.keys[key.ID] = &cp
	return nil
}

func (k keyStore) GetActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, key := range m.keys {
		if key.KeyHash == hash && key.IsActive {
			cp := *key
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (k keyStore) Get(ctx context.Context, id, partnerID string) (*models.APIKey, error) {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[id]
	if !ok || (partnerID != "" && key.PartnerID != partnerID) {
		return nil, utils.ErrNotFound
	}
	cp := *key
	return &cp, nil
}

func (k keyStore) ListByPartner(ctx context.Context, partnerID string) ([]*models.APIKey, error) {
	return k.ListByPartners(ctx, []string{partnerID})
}

func (k keyStore) ListByPartners(ctx context.Context, partnerIDs []string) ([]*models.APIKey, error) {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range partnerIDs {
		want[id] = true
	}
	out := []*models.APIKey{}
	for _, key := range m.keys {
		if want[key.PartnerID] {
			cp := *key
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (k keyStore) Delete(ctx context.Context, id, partnerID string) (int64, error) {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[id]
	if !ok || key.PartnerID != partnerID {
		return 0, nil
	}
	delete(m.keys, id)
	return 1, nil
}

func (k keyStore) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[id]
	if !ok {
		return 0, nil
	}
	key.IsActive = active
	return 1, nil
}

func (k keyStore) TouchLastUsed(ctx context.Context, ids []string, at time.Time) error {
	m := k.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.touched[id] = at
		if key, ok := m.keys[id]; ok {
			t := at
			key.LastUsedAt = &t
		}
	}
	return nil
}

// productStore adapts memStore to ProductStore.
type productStore struct{ *memStore }

func (p productStore) ListActive(ctx context.Context) ([]*models.Product, error) {
	m := p.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Product{}
	for _, pr := range m.products {
		if pr.IsActive {
			cp := *pr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (p productStore) ListActiveByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	m := p.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productReads++
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []*models.Product{}
	for _, id := range ids {
		if pr, ok := m.products[id]; ok && pr.IsActive {
			cp := *pr
			if pr.Price != nil {
				v := *pr.Price
				cp.Price = &v
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

// orderStore adapts memStore to OrderStore.
type orderStore struct{ *memStore }

func (o orderStore) Create(ctx context.Context, order *models.Order) error {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	order.ID = m.nextID("order")
	order.CreatedAt = time.Now()
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (o orderStore) CreateWithItems(ctx context.Context, order *models.Order) error {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.failOrderTx != nil {
		return m.failOrderTx
	}
	order.ID = m.nextID("order")
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (o orderStore) ListByPartner(ctx context.Context, partnerID string, limit int) ([]*models.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Order{}
	for _, ord := range m.orders {
		if ord.PartnerID != nil && *ord.PartnerID == partnerID {
			cp := *ord
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (o orderStore) GetByPartner(ctx context.Context, id, partnerID string) (*models.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok || ord.PartnerID == nil || *ord.PartnerID != partnerID {
		return nil, utils.ErrNotFound
	}
	cp := *ord
	return &cp, nil
}

func (o orderStore) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []*models.Order{}
	for _, ord := range m.orders {
		if (f.Source == "" || ord.Source == f.Source) && (f.Status == "" || ord.Status == f.Status) {
			cp := *ord
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (o orderStore) Count(ctx context.Context, f models.OrderFilter) (int64, error) {
	list, err := o.List(ctx, f)
	return int64(len(list)), err
}

func (o orderStore) Update(ctx context.Context, id string, u repository.OrderUpdate) (*models.Order, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if u.Status != nil {
		ord.Status = *u.Status
	}
	if u.PayoutStatus != nil {
		ps := *u.PayoutStatus
		ord.PartnerPayoutStatus = &ps
		ord.PartnerPayoutPaidAt = u.PaidAt
	}
	cp := *ord
	return &cp, nil
}

func (o orderStore) Track(ctx context.Context, id, phone string) (*models.TrackedOrder, error) {
	m := o.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok || (ord.Phone1 != phone && (ord.Phone2 == nil || *ord.Phone2 != phone)) {
		return nil, utils.ErrNotFound
	}
	return &models.TrackedOrder{ID: ord.ID, Status: ord.Status, CreatedAt: ord.CreatedAt}, nil
}

// recordingNotifier captures order events.
type recordingNotifier struct {
	mu      sync.Mutex
	created []*models.Order
	updated []*models.Order
}

func (r *recordingNotifier) OrderCreated(o *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, o)
}

func (r *recordingNotifier) OrderUpdated(o *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, o)
}

// recordingUsage captures key usage calls.
type recordingUsage struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingUsage) RecordKeyUsage(ctx context.Context, keyID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, keyID)
}

func price(v int64) *int64 { return &v }
