package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	assert.Equal(t, "203.0.113.0", AnonymizeIP("203.0.113.57"))
	assert.Equal(t, "2001:db8:abcd::", AnonymizeIP("2001:db8:abcd:12::1"))
	assert.Equal(t, "invalid", AnonymizeIP("not-an-ip"))
}

func TestMaskIdentifier(t *testing.T) {
	assert.Equal(t, "1b2c3d4e***", MaskIdentifier("1b2c3d4e-0000-4000-8000-000000000000"))
	assert.Equal(t, "***", MaskIdentifier("short"))
	assert.Equal(t, "unknown", MaskIdentifier(""))
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("ありがとう")
	assert.Len(t, fp, 16)
	assert.Equal(t, fp, Fingerprint("ありがとう"))
	assert.NotEqual(t, fp, Fingerprint("ありがと"))
}
