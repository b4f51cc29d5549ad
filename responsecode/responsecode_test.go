package responsecode_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/goliatone/go-auth-confirm/responsecode"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		id    uuid.UUID
		token string
	}{
		{name: "single byte token", id: uuid.New(), token: "t"},
		{name: "nil id", id: uuid.Nil, token: "token"},
		{name: "identity style token", id: uuid.New(), token: "CfDJ8Nc+/fRk2ulIk6dlnxxwQzPnTpV=="},
		{name: "multibyte token", id: uuid.New(), token: "jeton-été-✓"},
		{name: "long token", id: uuid.New(), token: strings.Repeat("abc", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := responsecode.Encode(tt.id, tt.token)
			require.NoError(t, err)
			assert.NotContains(t, code, "=")
			assert.NotContains(t, code, "+")
			assert.NotContains(t, code, "/")

			id, token, err := responsecode.Decode(code)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestEncodeWireLayout(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	code, err := responsecode.Encode(id, "tok")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(code)
	require.NoError(t, err)
	require.Len(t, raw, 19)
	assert.Equal(t, id[:], raw[:16])
	assert.Equal(t, []byte("tok"), raw[16:])
}

func TestEncodeIsDeterministic(t *testing.T) {
	id := uuid.New()

	first, err := responsecode.Encode(id, "t")
	require.NoError(t, err)
	second, err := responsecode.Encode(id, "t")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncodeDistinctness(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()

	byA := responsecode.MustEncode(idA, "token")
	byB := responsecode.MustEncode(idB, "token")
	assert.NotEqual(t, byA, byB)

	tokA := responsecode.MustEncode(idA, "token-a")
	tokB := responsecode.MustEncode(idA, "token-b")
	assert.NotEqual(t, tokA, tokB)
}

func TestEncodeRequiresToken(t *testing.T) {
	_, err := responsecode.Encode(uuid.New(), "")
	require.Error(t, err)
	assert.True(t, responsecode.IsValidationError(err))
	assert.False(t, responsecode.IsFormatError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, responsecode.TextCodeValidation, richErr.TextCode)
}

func TestDecodeFailures(t *testing.T) {
	zeroID := base64.RawURLEncoding.EncodeToString(make([]byte, 16))
	invalidUTF8 := base64.RawURLEncoding.EncodeToString(append(make([]byte, 16), 0xff, 0xfe))

	tests := []struct {
		name       string
		code       string
		validation bool
		format     bool
	}{
		{name: "empty code", code: "", validation: true},
		{name: "not base64", code: "not-base64!!", format: true},
		{name: "padded standard base64", code: "AAAAAAAAAAAAAAAAAAAAAHQ=", format: true},
		{name: "id without token", code: zeroID, format: true},
		{name: "short payload", code: base64.RawURLEncoding.EncodeToString([]byte("short")), format: true},
		{name: "token not utf8", code: invalidUTF8, format: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := responsecode.Decode(tt.code)
			require.Error(t, err)
			assert.Equal(t, uuid.Nil, id)
			assert.Empty(t, token)
			assert.Equal(t, tt.validation, responsecode.IsValidationError(err))
			assert.Equal(t, tt.format, responsecode.IsFormatError(err))
		})
	}
}

func TestDecodeMinimumLengthBoundary(t *testing.T) {
	payload := append(make([]byte, 16), 'x')
	code := base64.RawURLEncoding.EncodeToString(payload)

	id, token, err := responsecode.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, "x", token)
}
