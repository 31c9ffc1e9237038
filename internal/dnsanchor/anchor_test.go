package dnsanchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullRecord(t *testing.T) {
	txt := "TS=1756032000;SHA256=2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824;FILE=heartbeats_0005.json"

	a := Parse(txt)
	require.NotNil(t, a)
	assert.Equal(t, "heartbeats_0005.json", a.File)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a.SHA256)
	assert.Equal(t, "1756032000", a.TS)
	assert.Equal(t, txt, a.Raw)
	assert.True(t, a.Complete())
}

func TestParseStripsQuotes(t *testing.T) {
	a := Parse(`"TS=1;SHA256=2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824;FILE=x.json"`)
	assert.Equal(t, "x.json", a.File)
	assert.NotContains(t, a.Raw, `"`)
}

func TestParseUppercaseDigestNormalized(t *testing.T) {
	a := Parse("SHA256=2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824;FILE=x.json")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a.SHA256)
}

func TestParseDiscardsBadDigest(t *testing.T) {
	tests := []struct {
		name string
		txt  string
	}{
		{"too short", "SHA256=abc123;FILE=x.json"},
		{"non-hex", "SHA256=zzf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824;FILE=x.json"},
		{"empty", "SHA256=;FILE=x.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Parse(tt.txt)
			assert.Empty(t, a.SHA256, "malformed digest must be discarded, not propagated")
			assert.False(t, a.Complete())
		})
	}
}

func TestParseUnknownKeysIgnored(t *testing.T) {
	a := Parse("VERSION=2;SHA256=2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824;FILE=x.json;EXTRA=stuff")
	assert.True(t, a.Complete(), "unknown keys must not break parsing")
}

func TestParseMissingKeys(t *testing.T) {
	a := Parse("TS=1756032000")
	assert.Empty(t, a.File)
	assert.Empty(t, a.SHA256)
	assert.False(t, a.Complete())
}

func TestParseGarbage(t *testing.T) {
	a := Parse("not a key value record at all")
	require.NotNil(t, a, "parser degrades to an empty anchor, never errors")
	assert.False(t, a.Complete())
}

func TestCompleteNilReceiver(t *testing.T) {
	var a *Anchor
	assert.False(t, a.Complete())
}

func TestMergeTXT(t *testing.T) {
	merged := MergeTXT([]string{"TS=1;SHA256=2cf24dba5fb0a30e26e83b2ac5b9e29e1b", "161e5c1fa7425e73043362938b9824;FILE=x.json"})
	a := Parse(merged)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a.SHA256, "split TXT strings concatenate into one record")
	assert.Equal(t, "x.json", a.File)
}
