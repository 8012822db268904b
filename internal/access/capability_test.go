package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clownfish2023/web3fans/internal/access"
)

func TestCapability_SingleUse(t *testing.T) {
	svc := pureService()
	g := testGroup()
	rep := reportFor(g, 0x01)

	capability, err := svc.RequestReportAccess(keyFor(g, 1000), rep, g, 0)
	require.NoError(t, err)

	_, _, err = capability.Consume()
	require.NoError(t, err)

	_, _, err = capability.Consume()
	assert.ErrorIs(t, err, access.ErrCapabilityConsumed)
}

func TestCapability_CopiesKeyID(t *testing.T) {
	svc := pureService()
	g := testGroup()
	rep := reportFor(g, 0x01)
	want := append([]byte(nil), rep.KeyID...)

	capability, err := svc.RequestReportAccess(keyFor(g, 1000), rep, g, 0)
	require.NoError(t, err)

	// Mutating the source after minting must not leak into the capability
	rep.KeyID[0] ^= 0xFF

	_, keyID, err := capability.Consume()
	require.NoError(t, err)
	assert.Equal(t, want, keyID)
}
