package mocks

import "context"

// PassthroughTxManager runs fn directly without opening a transaction.
type PassthroughTxManager struct{}

func (PassthroughTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
