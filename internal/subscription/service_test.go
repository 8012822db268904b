package subscription_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/clownfish2023/web3fans/internal/database"
	"github.com/clownfish2023/web3fans/internal/group"
	"github.com/clownfish2023/web3fans/internal/namespace"
	"github.com/clownfish2023/web3fans/internal/subscription"
	"github.com/clownfish2023/web3fans/internal/wallet"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return db
}

type fixture struct {
	db      *sql.DB
	groups  *group.Service
	subs    *subscription.Service
	wallets *wallet.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	return &fixture{
		db:      db,
		groups:  group.NewService(group.NewRepository(db), zap.NewNop()),
		subs:    subscription.NewService(subscription.NewRepository(db), zap.NewNop()),
		wallets: wallet.NewService(wallet.NewRepository(db)),
	}
}

func (f *fixture) createGroup(t *testing.T, fee, periodMS, maxMembers int64) *group.Group {
	t.Helper()

	g, _, _, err := f.groups.Create(context.Background(), "owner", &group.CreateGroupRequest{
		Name:                 "alpha research",
		SubscriptionFee:      fee,
		SubscriptionPeriodMS: periodMS,
		MaxMembers:           maxMembers,
	}, 0)
	require.NoError(t, err)
	return g
}

func (f *fixture) fund(t *testing.T, principal string, amount int64) {
	t.Helper()

	_, err := f.wallets.Deposit(context.Background(), principal, amount, 0)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, principal string) int64 {
	t.Helper()

	account, err := f.wallets.GetByPrincipal(context.Background(), principal)
	require.NoError(t, err)
	return account.Balance
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 1000, 86_400_000, 0)
	f.fund(t, "alice", 5000)

	sub, key, secret, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{
		GroupID:       g.ID,
		Amount:        1000,
		WithAccessKey: true,
	}, 10_000)
	require.NoError(t, err)

	assert.Equal(t, g.ID, sub.GroupID)
	assert.Equal(t, "alice", sub.Subscriber)
	assert.Equal(t, int64(10_000), sub.SubscribedAt)
	assert.Equal(t, int64(10_000+86_400_000), sub.ExpiresAt)

	require.NotNil(t, key)
	assert.Equal(t, sub.ID, key.SubscriptionID)
	assert.Equal(t, sub.ExpiresAt, key.ExpiresAt)
	assert.Equal(t, namespace.Derive(g.ID), key.Namespace)
	assert.NotEmpty(t, secret)

	// Payment moved in full to the owner
	assert.Equal(t, int64(4000), f.balance(t, "alice"))
	assert.Equal(t, int64(1000), f.balance(t, "owner"))

	updated, err := f.groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.CurrentMembers)

	// Persisted copy matches what was returned
	stored, err := f.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ExpiresAt, stored.ExpiresAt)
	assert.Equal(t, sub.Subscriber, stored.Subscriber)
}

func TestSubscribe_ExactFeeRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 1000, 86_400_000, 0)
	f.fund(t, "alice", 5000)

	for _, amount := range []int64{999, 1001, 0} {
		_, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{
			GroupID: g.ID,
			Amount:  amount,
		}, 0)
		assert.ErrorIs(t, err, subscription.ErrInvalidFee, "amount %d", amount)
	}

	// Rejected payments leave no trace
	assert.Equal(t, int64(5000), f.balance(t, "alice"))
	updated, err := f.groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.CurrentMembers)
}

func TestSubscribe_GroupFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 1000, 86_400_000, 1)
	f.fund(t, "alice", 1000)
	f.fund(t, "bob", 1000)

	_, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 1000}, 0)
	require.NoError(t, err)

	_, _, _, err = f.subs.Subscribe(ctx, "bob", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 1000}, 0)
	assert.ErrorIs(t, err, subscription.ErrGroupFull)

	assert.Equal(t, int64(1000), f.balance(t, "bob"))
	updated, err := f.groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.CurrentMembers)
}

func TestSubscribe_InsufficientFundsRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 1000, 86_400_000, 0)
	f.fund(t, "alice", 500)

	_, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 1000}, 0)
	assert.ErrorIs(t, err, subscription.ErrInsufficientFunds)

	// The member count was bumped inside the transaction before the
	// debit failed; the rollback must undo it.
	updated, err := f.groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.CurrentMembers)
	assert.Equal(t, int64(500), f.balance(t, "alice"))

	_, err = f.wallets.GetByPrincipal(ctx, "owner")
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
}

func TestSubscribe_UnknownGroup(t *testing.T) {
	f := newFixture(t)

	_, _, _, err := f.subs.Subscribe(context.Background(), "alice", &subscription.SubscribeRequest{
		GroupID: uuid.New(),
		Amount:  1000,
	}, 0)
	assert.ErrorIs(t, err, subscription.ErrGroupNotFound)
}

func TestSubscribe_RepeatedSubscriptionsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 1000, 86_400_000, 0)
	f.fund(t, "alice", 2000)

	first, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 1000}, 0)
	require.NoError(t, err)

	// A second subscription while the first is still live is fine;
	// each one is an independent record with its own window.
	second, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 1000}, 100)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(100+86_400_000), second.ExpiresAt)
	assert.Equal(t, int64(0), f.balance(t, "alice"))
	assert.Equal(t, int64(2000), f.balance(t, "owner"))
}

func TestSubscribe_ZeroFeeWithoutWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 0, 86_400_000, 0)

	// No deposit was ever made for the subscriber: a free group must not
	// touch wallets at all, so the missing account cannot fail the debit.
	sub, _, _, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(86_400_000), sub.ExpiresAt)

	updated, err := f.groups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.CurrentMembers)

	// Neither side of the transfer came into existence
	_, err = f.wallets.GetByPrincipal(ctx, "alice")
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
	_, err = f.wallets.GetByPrincipal(ctx, "owner")
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
}

func TestSubscribe_ZeroPeriod(t *testing.T) {
	f := newFixture(t)

	g := f.createGroup(t, 0, 0, 0)

	// Zero fee needs no wallet balance, zero period expires immediately
	sub, _, _, err := f.subs.Subscribe(context.Background(), "alice", &subscription.SubscribeRequest{GroupID: g.ID, Amount: 0}, 7777)
	require.NoError(t, err)

	assert.Equal(t, int64(7777), sub.ExpiresAt)
	assert.True(t, sub.IsValid(g.ID, 7777))
	assert.False(t, sub.IsValid(g.ID, 7778))
}

func TestAuthenticateAccessKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createGroup(t, 0, 86_400_000, 0)

	_, key, secret, err := f.subs.Subscribe(ctx, "alice", &subscription.SubscribeRequest{
		GroupID:       g.ID,
		Amount:        0,
		WithAccessKey: true,
	}, 0)
	require.NoError(t, err)

	got, err := f.subs.AuthenticateAccessKey(ctx, key.ID, secret)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
	assert.Equal(t, key.Namespace, got.Namespace)

	// Wrong secret and unknown key are indistinguishable
	_, err = f.subs.AuthenticateAccessKey(ctx, key.ID, "not-the-secret")
	assert.ErrorIs(t, err, subscription.ErrAccessKeyNotFound)

	_, err = f.subs.AuthenticateAccessKey(ctx, uuid.New(), secret)
	assert.ErrorIs(t, err, subscription.ErrAccessKeyNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.subs.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}
