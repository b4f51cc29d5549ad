// Package responsecode encodes a user id and a verification token into the
// opaque, URL safe value carried by account action links.
//
// Wire layout: the 16 raw bytes of the user id followed by the UTF-8 bytes of
// the token, encoded with base64url without padding. Links issued with this
// layout must stay decodable, so the layout is fixed.
package responsecode

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	idSize = 16
	// MinDecodedLength is the smallest payload accepted by Decode: a full
	// id plus at least one token byte.
	MinDecodedLength = idSize + 1
)

var encoding = base64.RawURLEncoding

// Encode returns the response code for id and token. The same pair always
// yields the same code.
func Encode(id uuid.UUID, token string) (string, error) {
	if token == "" {
		return "", newValidationError("token", "token is required to build a response code")
	}

	buf := make([]byte, 0, idSize+len(token))
	buf = append(buf, id[:]...)
	buf = append(buf, token...)

	return encoding.EncodeToString(buf), nil
}

// Decode splits a response code back into the user id and token.
func Decode(code string) (uuid.UUID, string, error) {
	if code == "" {
		return uuid.Nil, "", newValidationError("code", "response code is required")
	}

	raw, err := encoding.DecodeString(code)
	if err != nil {
		return uuid.Nil, "", wrapFormatError(err, "response code is not valid base64url")
	}

	if len(raw) < MinDecodedLength {
		return uuid.Nil, "", newFormatError("response code payload is too short", len(raw))
	}

	tokenBytes := raw[idSize:]
	if !utf8.Valid(tokenBytes) {
		return uuid.Nil, "", newFormatError("response code token is not valid UTF-8", len(raw))
	}

	id, err := uuid.FromBytes(raw[:idSize])
	if err != nil {
		return uuid.Nil, "", wrapFormatError(err, "response code id is malformed")
	}

	return id, string(tokenBytes), nil
}

// MustEncode is Encode for callers holding a token they already checked.
func MustEncode(id uuid.UUID, token string) string {
	code, err := Encode(id, token)
	if err != nil {
		panic(err)
	}
	return code
}
