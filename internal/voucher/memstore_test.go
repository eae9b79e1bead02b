package voucher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/toko-voucher/internal/events"
)

// memStore is an in-memory Store and AdminStore used across the package tests.
type memStore struct {
	mu       sync.Mutex
	vouchers map[string]Voucher
	claims   map[string]*Claim
	seq      int

	findErr   error
	insertErr error
	updateErr error
	locked    int
	txCount   int
}

func newMemStore(vs ...Voucher) *memStore {
	s := &memStore{vouchers: map[string]Voucher{}, claims: map[string]*Claim{}}
	for _, v := range vs {
		s.put(v)
	}
	return s
}

func (s *memStore) put(v Voucher) Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		s.seq++
		v.ID = fmt.Sprintf("v-%d", s.seq)
	}
	s.vouchers[v.ID] = v
	return v
}

func claimKey(userID, voucherID string) string { return userID + "|" + voucherID }

func (s *memStore) FindVoucherByCode(_ context.Context, code string) (*Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, v := range s.vouchers {
		if strings.EqualFold(v.Code, code) {
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindClaim(_ context.Context, userID, voucherID string) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[claimKey(userID, voucherID)]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s *memStore) LockClaim(ctx context.Context, userID, voucherID string) (*Claim, error) {
	s.mu.Lock()
	s.locked++
	s.mu.Unlock()
	return s.FindClaim(ctx, userID, voucherID)
}

func (s *memStore) InsertClaim(_ context.Context, userID, voucherID string) (Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return Claim{}, s.insertErr
	}
	key := claimKey(userID, voucherID)
	if _, ok := s.claims[key]; ok {
		return Claim{}, ErrDuplicateClaim
	}
	s.seq++
	c := &Claim{ID: fmt.Sprintf("c-%d", s.seq), UserID: userID, VoucherID: voucherID, ClaimedAt: time.Now()}
	s.claims[key] = c
	return *c, nil
}

func (s *memStore) UpdateClaimUsed(_ context.Context, voucherID, userID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	c, ok := s.claims[claimKey(userID, voucherID)]
	if !ok || c.IsUsed {
		return 0, nil
	}
	c.IsUsed = true
	c.UsedAt = &at
	return 1, nil
}

func (s *memStore) ListAvailable(_ context.Context, now time.Time) ([]Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Voucher
	for _, v := range s.vouchers {
		if v.Claimable(now) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *memStore) ListClaimed(_ context.Context, userID string) ([]ClaimedVoucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ClaimedVoucher
	for _, c := range s.claims {
		if c.UserID != userID {
			continue
		}
		out = append(out, ClaimedVoucher{Voucher: s.vouchers[c.VoucherID], Claim: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *memStore) InTx(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	s.txCount++
	s.mu.Unlock()
	return fn(s)
}

func (s *memStore) ListVouchers(_ context.Context, limit, offset int) ([]Stats, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]Stats, 0, len(s.vouchers))
	for _, v := range s.vouchers {
		st := Stats{Voucher: v}
		for _, c := range s.claims {
			if c.VoucherID == v.ID {
				st.ClaimedCount++
				if c.IsUsed {
					st.UsedCount++
				}
			}
		}
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	total := int64(len(all))
	if offset >= len(all) {
		return []Stats{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (s *memStore) GetVoucher(_ context.Context, id string) (Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok {
		return Voucher{}, ErrNotFound
	}
	return v, nil
}

func (s *memStore) fromInput(id string, in Input) Voucher {
	return Voucher{
		ID:            id,
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinPurchase:   in.MinPurchase,
		MaxDiscount:   in.MaxDiscount,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsActive:      in.Active(),
	}
}

func (s *memStore) codeTaken(code, exceptID string) bool {
	for id, v := range s.vouchers {
		if id != exceptID && strings.EqualFold(v.Code, code) {
			return true
		}
	}
	return false
}

func (s *memStore) CreateVoucher(_ context.Context, in Input) (Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codeTaken(in.Code, "") {
		return Voucher{}, ErrDuplicateCode
	}
	s.seq++
	v := s.fromInput(fmt.Sprintf("v-%d", s.seq), in)
	s.vouchers[v.ID] = v
	return v, nil
}

func (s *memStore) UpdateVoucher(_ context.Context, id string, in Input) (Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[id]; !ok {
		return Voucher{}, ErrNotFound
	}
	if s.codeTaken(in.Code, id) {
		return Voucher{}, ErrDuplicateCode
	}
	v := s.fromInput(id, in)
	s.vouchers[id] = v
	return v, nil
}

func (s *memStore) DeleteVoucher(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[id]; !ok {
		return ErrNotFound
	}
	delete(s.vouchers, id)
	for k, c := range s.claims {
		if c.VoucherID == id {
			delete(s.claims, k)
		}
	}
	return nil
}

func (s *memStore) SetVoucherActive(_ context.Context, id string, active bool) (Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[id]
	if !ok {
		return Voucher{}, ErrNotFound
	}
	v.IsActive = active
	s.vouchers[id] = v
	return v, nil
}

// memCache is a map-backed Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

type recordedEvent struct {
	topic       string
	aggregateID string
	payload     any
}

type memEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *memEmitter) Emit(_ context.Context, topic, aggregateID string, payload any) (events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{topic: topic, aggregateID: aggregateID, payload: payload})
	return events.Event{Topic: topic, AggregateID: aggregateID}, nil
}

func (m *memEmitter) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.topic)
	}
	return out
}

type countingLocker struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (l *countingLocker) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	err := l.err
	l.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}
