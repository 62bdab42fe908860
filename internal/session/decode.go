package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/sweetshop/internal/model"
)

// ErrTokenDecode is returned when a token's claim payload cannot be read.
var ErrTokenDecode = errors.New("token decode failed")

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode reads the display identity from the claim payload of a
// three-segment token. The signature is NOT verified: the result may only
// drive what the UI shows, never what a user is allowed to do.
func Decode(token string) (model.Identity, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return model.Identity{}, fmt.Errorf("%w: %w: expected 3 segments, got %d", ErrTokenDecode, jwt.ErrTokenMalformed, len(parts))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: decoding payload: %w", ErrTokenDecode, err)
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return model.Identity{}, fmt.Errorf("%w: parsing payload: %w", ErrTokenDecode, err)
	}
	if claims == nil {
		return model.Identity{}, fmt.Errorf("%w: payload is not an object", ErrTokenDecode)
	}

	return model.Identity{
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
		Role:  model.NormalizeRole(stringClaim(claims, "role")),
	}, nil
}

// decodeSegment accepts the base64url alphabet used by JWTs and falls back
// to the standard alphabet, with or without padding.
func decodeSegment(seg string) ([]byte, error) {
	if seg == "" {
		return nil, errors.New("empty segment")
	}
	if b, err := segmentParser.DecodeSegment(seg); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(seg, "=")); err == nil {
		return b, nil
	}
	return nil, fmt.Errorf("%w: invalid base64", jwt.ErrTokenMalformed)
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
