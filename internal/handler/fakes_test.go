package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GTDGit/herbal_api/internal/models"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/utils"
)

// store backs the handler tests. Methods a test does not exercise are left
// to the embedded nil interfaces and panic if reached.
type store struct {
	service.PartnerStore
	mu       sync.Mutex
	seq      int
	partners map[string]*models.Partner
	keys     map[string]*models.APIKey
	products map[string]*models.Product
	orders   map[string]*models.Order
	failWith error
}

func newStore() *store {
	return &store{
		partners: map[string]*models.Partner{},
		keys:     map[string]*models.APIKey{},
		products: map[string]*models.Product{},
		orders:   map[string]*models.Order{},
	}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *store) addPartner(id string, status models.PartnerStatus) *models.Partner {
	p := &models.Partner{ID: id, Name: "Partner " + id, Status: status}
	s.partners[id] = p
	return p
}

func (s *store) addProduct(id string, price int64) {
	s.products[id] = &models.Product{ID: id, Name: "Product " + id, Slug: id, Price: &price, IsActive: true}
}

func (s *store) GetByID(_ context.Context, id string) (*models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	p, ok := s.partners[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *store) List(context.Context) ([]*models.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []*models.Partner{}
	for _, p := range s.partners {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *store) UpdateStatus(_ context.Context, id string, status models.PartnerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return utils.ErrNotFound
	}
	p.Status = status
	return nil
}

type keyStore struct {
	service.APIKeyStore
	*store
}

func (k keyStore) Create(_ context.Context, key *models.APIKey) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	key.ID = k.nextID("key")
	key.IsActive = true
	key.CreatedAt = time.Now()
	cp := *key
	k.keys[key.ID] = &cp
	return nil
}

func (k keyStore) GetActiveByHash(_ context.Context, hash string) (*models.APIKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range k.keys {
		if key.KeyHash == hash && key.IsActive {
			cp := *key
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (k keyStore) Get(_ context.Context, id, partnerID string) (*models.APIKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	key, ok := k.keys[id]
	if !ok || (partnerID != "" && key.PartnerID != partnerID) {
		return nil, utils.ErrNotFound
	}
	cp := *key
	return &cp, nil
}

func (k keyStore) ListByPartners(context.Context, []string) ([]*models.APIKey, error) {
	return nil, nil
}

func (k keyStore) TouchLastUsed(context.Context, []string, time.Time) error { return nil }

type productStore struct{ *store }

func (p productStore) ListActive(context.Context) ([]*models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*models.Product{}
	for _, pr := range p.products {
		cp := *pr
		out = append(out, &cp)
	}
	return out, nil
}

func (p productStore) ListActiveByIDs(_ context.Context, ids []string) ([]*models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*models.Product{}
	for _, id := range ids {
		if pr, ok := p.products[id]; ok {
			cp := *pr
			out = append(out, &cp)
		}
	}
	return out, nil
}

type orderStore struct {
	service.OrderStore
	*store
}

func (o orderStore) Create(_ context.Context, order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	order.ID = o.nextID("order")
	order.CreatedAt = time.Now()
	cp := *order
	o.orders[order.ID] = &cp
	return nil
}

func (o orderStore) CreateWithItems(ctx context.Context, order *models.Order) error {
	return o.Create(ctx, order)
}

func (o orderStore) ListByPartner(_ context.Context, partnerID string, _ int) ([]*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []*models.Order
	for _, ord := range o.orders {
		if ord.PartnerID != nil && *ord.PartnerID == partnerID {
			cp := *ord
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (o orderStore) GetByPartner(_ context.Context, id, partnerID string) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ord, ok := o.orders[id]
	if !ok || ord.PartnerID == nil || *ord.PartnerID != partnerID {
		return nil, utils.ErrNotFound
	}
	cp := *ord
	return &cp, nil
}

func (o orderStore) List(_ context.Context, f models.OrderFilter) ([]*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failWith != nil {
		return nil, o.failWith
	}
	var out []*models.Order
	for _, ord := range o.orders {
		if f.Source == "" || ord.Source == f.Source {
			cp := *ord
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (o orderStore) Count(_ context.Context, f models.OrderFilter) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var n int64
	for _, ord := range o.orders {
		if f.Source == "" || ord.Source == f.Source {
			n++
		}
	}
	return n, nil
}

func (o orderStore) Update(_ context.Context, id string, u repository.OrderUpdate) (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ord, ok := o.orders[id]
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

func (o orderStore) Track(_ context.Context, id, phone string) (*models.TrackedOrder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ord, ok := o.orders[id]
	if !ok || ord.Phone1 != phone {
		return nil, utils.ErrNotFound
	}
	return &models.TrackedOrder{ID: ord.ID, Status: ord.Status, CreatedAt: ord.CreatedAt}, nil
}
