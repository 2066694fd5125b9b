package metadata

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/oboe/errs"
)

const (
	validV2 = "2B0123456789ABCDEF0123456789ABCDEF01234567" + "89ABCDEF01234567" + "01"
	validV1 = "1B0123456789ABCDEF0123456789ABCDEF01234567" + "89ABCDEF01234567"
)

func TestRandom(t *testing.T) {
	t.Parallel()

	a, err := Random()
	require.NoError(t, err)
	b, err := Random()
	require.NoError(t, err)

	assert.True(t, a.IsValid())
	assert.True(t, b.IsValid())
	assert.False(t, a.Sampled)
	assert.NotEqual(t, a.TaskID, b.TaskID)
}

func TestRandom_ReaderFailure(t *testing.T) {
	prev := randReader
	t.Cleanup(func() { randReader = prev })

	randReader = bytes.NewReader(nil)
	md, err := Random()
	require.Error(t, err)
	assert.False(t, md.IsValid())
}

func TestRandom_ZeroSource(t *testing.T) {
	prev := randReader
	t.Cleanup(func() { randReader = prev })

	randReader = bytes.NewReader(make([]byte, 1024))
	_, err := Random()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrState))
}

func TestParse_V2(t *testing.T) {
	t.Parallel()

	md, err := Parse(validV2)
	require.NoError(t, err)
	assert.True(t, md.IsValid())
	assert.True(t, md.Sampled)
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF01234567", md.TaskIDString())
	assert.Equal(t, "89ABCDEF01234567", md.OpIDString())

	v, err := Version(validV2)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestParse_LowerCase(t *testing.T) {
	t.Parallel()

	md, err := Parse(strings.ToLower(validV2))
	require.NoError(t, err)
	assert.Equal(t, validV2, md.String())
}

func TestParse_V1(t *testing.T) {
	t.Parallel()

	md, err := Parse(validV1)
	require.NoError(t, err)
	assert.True(t, md.IsValid())
	assert.False(t, md.Sampled)

	v1, err := md.FormatV1()
	require.NoError(t, err)
	assert.Equal(t, validV1, v1)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":          "",
		"short":          validV2[:len(validV2)-2],
		"long":           validV2 + "00",
		"non hex":        "2B" + strings.Repeat("G", StringLen-2),
		"odd length":     validV2[:StringLen-1],
		"bad version":    "3B" + validV2[2:],
		"v1 with flags":  "1B" + validV2[2:],
		"v2 without":     "2B" + validV1[2:],
		"bad lengths":    "29" + validV2[2:],
		"options bit":    "2F" + validV2[2:],
		"zero task":      "2B" + strings.Repeat("0", MaxTaskIDLen*2) + "89ABCDEF01234567" + "01",
		"zero op":        "2B0123456789ABCDEF0123456789ABCDEF01234567" + strings.Repeat("0", MaxOpIDLen*2) + "01",
		"over pack size": strings.Repeat("A", MaxMetadataPackLen+2),
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			md, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidFormat))
			assert.False(t, md.IsValid())
			assert.Equal(t, Metadata{}, md)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 64; i++ {
		md, err := Random()
		require.NoError(t, err)
		md = md.WithSampled(i%2 == 0)

		s, err := md.Format()
		require.NoError(t, err)
		assert.Len(t, s, StringLen)
		assert.True(t, strings.HasPrefix(s, "2B"))

		back, err := Parse(s)
		require.NoError(t, err)
		assert.True(t, md.Equal(back))
	}
}

func TestFormat_Invalid(t *testing.T) {
	t.Parallel()

	s, err := Metadata{}.Format()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrState))
	assert.Empty(t, s)
	assert.Empty(t, Metadata{}.String())

	_, err = Metadata{}.FormatV1()
	assert.True(t, errors.Is(err, errs.ErrState))
}

func TestWithRandomOpID(t *testing.T) {
	t.Parallel()

	md, err := Parse(validV2)
	require.NoError(t, err)

	next, err := md.WithRandomOpID()
	require.NoError(t, err)
	assert.True(t, next.SameTrace(md))
	assert.NotEqual(t, md.OpID, next.OpID)
	assert.Equal(t, md.Sampled, next.Sampled)

	// the receiver is untouched
	assert.Equal(t, validV2, md.String())

	_, err = Metadata{}.WithRandomOpID()
	assert.True(t, errors.Is(err, errs.ErrState))
}

func TestWithOpID(t *testing.T) {
	t.Parallel()

	md, err := Parse(validV2)
	require.NoError(t, err)

	op := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	next, err := md.WithOpID(op)
	require.NoError(t, err)
	assert.Equal(t, "0102030405060708", next.OpIDString())

	op[0] = 9
	assert.Equal(t, "0102030405060708", next.OpIDString(), "copy must not alias the input")

	_, err = md.WithOpID([]byte{1, 2})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = md.WithOpID(make([]byte, MaxOpIDLen))
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = Metadata{}.WithOpID(op)
	assert.True(t, errors.Is(err, errs.ErrState))
}

func TestParseOpID(t *testing.T) {
	t.Parallel()

	id, err := ParseOpID("89abcdef01234567")
	require.NoError(t, err)
	assert.Equal(t, "89ABCDEF01234567", id.String())

	for _, bad := range []string{"", "89AB", "ZZABCDEF01234567", "0000000000000000"} {
		_, err := ParseOpID(bad)
		assert.True(t, errors.Is(err, errs.ErrInvalidFormat), bad)
	}
}
