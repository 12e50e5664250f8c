package tpk_test

import (
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effective-security/xpgp/testpgp"
	"github.com/effective-security/xpgp/tpk"
)

func TestDetailsKeyExpiration(t *testing.T) {
	hour := uint32(3600)
	day := uint32(86400)

	tcases := []struct {
		name string
		d    *tpk.Details
		exp  *time.Duration
	}{
		{
			name: "none",
			d:    &tpk.Details{},
			exp:  nil,
		},
		{
			name: "direct",
			d: &tpk.Details{
				Directs: []*packet.Signature{{KeyLifetimeSecs: &hour}},
			},
			exp: durationPtr(time.Hour),
		},
		{
			name: "identity",
			d: &tpk.Details{
				Identities: []*tpk.Identity{{
					UserID:         packet.NewUserId("a", "", ""),
					Certifications: []*packet.Signature{{KeyLifetimeSecs: &day}},
				}},
			},
			exp: durationPtr(24 * time.Hour),
		},
		{
			name: "direct_takes_precedence",
			d: &tpk.Details{
				Directs: []*packet.Signature{{KeyLifetimeSecs: &hour}},
				Identities: []*tpk.Identity{{
					UserID:         packet.NewUserId("a", "", ""),
					Certifications: []*packet.Signature{{KeyLifetimeSecs: &day}},
				}},
			},
			exp: durationPtr(time.Hour),
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.d.KeyExpiration()
			if tc.exp == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.exp, *got)
			}
		})
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func TestDetailsVerify(t *testing.T) {
	e := testpgp.NewEntity(
		testpgp.UserID("One <one@example.com>"),
		testpgp.UserID("Two <two@example.com>"),
	)
	require.Len(t, e.Details.Identities, 2)
	require.NoError(t, e.Details.Verify(e.Primary))
}

func TestDetailsVerifySkipsThirdParty(t *testing.T) {
	e := testpgp.NewEntity()

	// a certification by an unknown issuer cannot be checked and is
	// skipped rather than failed
	other := uint64(0x1122334455667788)
	id := e.Details.Identities[0]
	id.Certifications = append(id.Certifications, &packet.Signature{
		Version:     4,
		SigType:     packet.SigTypeGenericCert,
		PubKeyAlgo:  packet.PubKeyAlgoRSA,
		IssuerKeyId: &other,
	})

	require.NoError(t, e.Details.Verify(e.Primary))
	require.NoError(t, e.Certificate.Verify())
}
