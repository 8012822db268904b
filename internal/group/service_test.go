package group_test

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
)

func newTestService(t *testing.T) *group.Service {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return group.NewService(group.NewRepository(db), zap.NewNop())
}

func TestCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g, ac, secret, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{
		Name:                 "defi signals",
		Description:          "daily alpha",
		SubscriptionFee:      1000,
		SubscriptionPeriodMS: 86_400_000,
		MaxMembers:           50,
		ChatGroupRef:         "tg:-100123",
		InviteRef:            "https://t.me/+abc",
	}, 42)
	require.NoError(t, err)

	assert.Equal(t, "defi signals", g.Name)
	assert.Equal(t, "owner", g.Owner)
	assert.Equal(t, int64(1000), g.SubscriptionFee)
	assert.Equal(t, int64(86_400_000), g.SubscriptionPeriodMS)
	assert.Equal(t, int64(50), g.MaxMembers)
	assert.Equal(t, int64(0), g.CurrentMembers)
	assert.Equal(t, int64(42), g.CreatedAt)

	assert.Equal(t, g.ID, ac.GroupID)
	assert.NotEmpty(t, secret)
	// Only the digest is stored, never the secret itself
	assert.NotEqual(t, secret, ac.SecretHash)

	stored, err := svc.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, stored.Name)
	assert.Equal(t, g.SubscriptionFee, stored.SubscriptionFee)
}

func TestCreate_NegativeFee(t *testing.T) {
	svc := newTestService(t)

	_, _, _, err := svc.Create(context.Background(), "owner", &group.CreateGroupRequest{
		Name:            "bad",
		SubscriptionFee: -1,
	}, 0)
	assert.ErrorIs(t, err, group.ErrNegativeFee)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

func TestAuthorize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g1, ac1, secret1, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "one"}, 0)
	require.NoError(t, err)
	g2, _, _, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "two"}, 0)
	require.NoError(t, err)

	assert.NoError(t, svc.Authorize(ctx, ac1.ID, secret1, g1.ID))

	// A cap only opens the group it was minted with
	assert.ErrorIs(t, svc.Authorize(ctx, ac1.ID, secret1, g2.ID), group.ErrNotAuthorized)

	assert.ErrorIs(t, svc.Authorize(ctx, ac1.ID, "wrong-secret", g1.ID), group.ErrNotAuthorized)

	assert.ErrorIs(t, svc.Authorize(ctx, uuid.New(), secret1, g1.ID), group.ErrCapNotFound)
}

func TestUpdateDescription(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g, ac, secret, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "one", Description: "before"}, 0)
	require.NoError(t, err)

	updated, err := svc.UpdateDescription(ctx, g.ID, &group.UpdateDescriptionRequest{
		AdminCapID:     ac.ID,
		AdminCapSecret: secret,
		Description:    "after",
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Description)

	stored, err := svc.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Description)
}

func TestUpdateDescription_ForeignCap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g1, _, _, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "one", Description: "before"}, 0)
	require.NoError(t, err)
	_, ac2, secret2, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "two"}, 0)
	require.NoError(t, err)

	_, err = svc.UpdateDescription(ctx, g1.ID, &group.UpdateDescriptionRequest{
		AdminCapID:     ac2.ID,
		AdminCapSecret: secret2,
		Description:    "hijacked",
	})
	assert.ErrorIs(t, err, group.ErrNotAuthorized)

	stored, err := svc.GetByID(ctx, g1.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", stored.Description)
}

func TestUpdateFee(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g, ac, secret, err := svc.Create(ctx, "owner", &group.CreateGroupRequest{Name: "one", SubscriptionFee: 1000}, 0)
	require.NoError(t, err)

	updated, err := svc.UpdateFee(ctx, g.ID, &group.UpdateFeeRequest{
		AdminCapID:      ac.ID,
		AdminCapSecret:  secret,
		SubscriptionFee: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), updated.SubscriptionFee)

	_, err = svc.UpdateFee(ctx, g.ID, &group.UpdateFeeRequest{
		AdminCapID:      ac.ID,
		AdminCapSecret:  secret,
		SubscriptionFee: -5,
	})
	assert.ErrorIs(t, err, group.ErrNegativeFee)
}
