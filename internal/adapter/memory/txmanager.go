package memory

import (
	"context"
	"maps"
	"slices"
)

// TxManager runs functions atomically against a Store. Transactions are
// serialized on the store lock and a failed one restores the prior state.
type TxManager struct {
	store *Store
}

// NewTxManager creates a TxManager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTx executes fn holding the store lock. On error or panic every change
// fn made is discarded. Nested calls join the outer transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := m.store
	if owner, ok := ctx.Value(txCtxKey{}).(*Store); ok && owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pubs := maps.Clone(s.publications)
	audit := slices.Clone(s.audit)
	restore := func() {
		s.publications = pubs
		s.audit = audit
	}

	defer func() {
		if r := recover(); r != nil {
			restore()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, s)); err != nil {
		restore()
		return err
	}
	return nil
}
