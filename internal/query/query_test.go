package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
)

func seed(t *testing.T, store bridgetransaction.IStore, wallet, hash string) *model.BridgeTransaction {
	t.Helper()
	rec, err := store.Create(context.Background(), &model.BridgeTransaction{
		WalletAddress:   wallet,
		TransactionHash: hash,
		FromNetwork:     model.NetworkApechain,
		ToNetwork:       model.NetworkEthereum,
		Asset:           model.AssetAPE,
		Amount:          "10",
		Fee:             "1.0",
		Type:            model.TransactionTypeWithdrawal,
	})
	require.NoError(t, err)
	return rec
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestQuery_ReadsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := bridgetransaction.NewMemory()
	q, err := New(store)
	require.NoError(t, err)

	rec := seed(t, store, "0xWallet", "0xDeadBeef")

	byID, err := q.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, byID)

	byHash, err := q.GetByHash(ctx, " 0xdeadbeef ")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byHash.ID)

	list, err := q.ListByWallet(ctx, "0xwallet")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQuery_SeesLatestTransition(t *testing.T) {
	ctx := context.Background()
	store := bridgetransaction.NewMemory()
	q, err := New(store)
	require.NoError(t, err)
	rec := seed(t, store, "0xWallet", "0x01")

	confs := 6
	_, _, err = store.UpdateStatus(ctx, rec.ID, model.TransactionStatusConfirming, &confs)
	require.NoError(t, err)

	got, err := q.GetByHash(ctx, "0x01")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusConfirming, got.Status)
	assert.Equal(t, 6, got.Confirmations)
}

func TestQuery_Errors(t *testing.T) {
	ctx := context.Background()
	q, err := New(bridgetransaction.NewMemory())
	require.NoError(t, err)

	_, err = q.GetByID(ctx, 0)
	assert.True(t, model.IsKind(err, model.ErrorKindValidation))

	_, err = q.GetByID(ctx, 3)
	assert.True(t, model.IsKind(err, model.ErrorKindNotFound))

	_, err = q.GetByHash(ctx, "  ")
	assert.True(t, model.IsKind(err, model.ErrorKindValidation))

	_, err = q.GetByHash(ctx, "0xmissing")
	assert.True(t, model.IsKind(err, model.ErrorKindNotFound))

	list, err := q.ListByWallet(ctx, "0xnobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
