package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

// stubTx satisfies pgx.Tx for context plumbing tests; none of its methods are
// called.
type stubTx struct{ pgx.Tx }

func TestTxFromContext(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil tx on empty context")
	}

	tx := &stubTx{}
	ctx := WithTxContext(context.Background(), tx)
	if got := TxFromContext(ctx); got != tx {
		t.Errorf("expected stored tx, got %v", got)
	}
}

func TestWithTx_JoinsExistingTransaction(t *testing.T) {
	tx := &stubTx{}
	ctx := WithTxContext(context.Background(), tx)

	// A nil pool proves no new transaction is started.
	m := NewTxManager(nil)
	called := false
	err := m.WithTx(ctx, func(inner context.Context) error {
		called = true
		if TxFromContext(inner) != tx {
			t.Error("expected the outer transaction to be reused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected fn to run")
	}
}
