// Package keygen derives fixed-length storage keys from credential values and
// authentication contexts. All functions are pure and safe for concurrent use.
package keygen

import (
	"crypto"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/manorfm/tokenstore/internal/domain"
)

const (
	userNameField = "username"
	clientIDField = "client_id"
	scopeField    = "scope"
)

// KeyLength is the length of every derived key
const KeyLength = md5.Size * 2

// Verify checks that the key digest can be computed. It must be called once at
// startup; a failure is fatal and no store may be constructed.
func Verify() error {
	if !crypto.MD5.Available() {
		return fmt.Errorf("%w: md5 is not linked into the binary", domain.ErrDigestUnavailable)
	}
	if got := len(TokenKey("probe")); got != KeyLength {
		return fmt.Errorf("%w: derived key has length %d, want %d", domain.ErrDigestUnavailable, got, KeyLength)
	}
	return nil
}

// TokenKey derives the storage key of a raw token value. An empty value has no
// key and yields "", which callers treat as "no linkage".
func TokenKey(value string) string {
	if value == "" {
		return ""
	}
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

// AuthenticationKey derives a key identifying the same resource owner, client and
// requested scope across issuances. Scope order and duplicates do not affect the key,
// and a missing scope keys the same as an empty one.
func AuthenticationKey(auth *domain.Authentication) string {
	var values []field
	if !auth.IsClientOnly() {
		values = append(values, field{userNameField, auth.Name()})
	}
	values = append(values,
		field{clientIDField, auth.Request.ClientID},
		field{scopeField, formatScope(auth.Request.Scope)})
	return digest(values)
}

// ClientKey derives the key of a partner token held for resource on behalf of auth.
// auth may be nil when the token was obtained without a local user.
func ClientKey(resource *domain.ProtectedResource, auth *domain.Authentication) string {
	var values []field
	if auth != nil {
		values = append(values, field{userNameField, auth.Name()})
	}
	values = append(values,
		field{clientIDField, resource.ClientID},
		field{scopeField, formatScope(resource.Scopes)})
	return digest(values)
}

type field struct {
	name  string
	value string
}

// digest renders fields as {k=v, k=v} before hashing so keys stay stable across releases.
func digest(values []field) string {
	parts := make([]string, 0, len(values))
	for _, f := range values {
		parts = append(parts, f.name+"="+f.value)
	}
	return TokenKey("{" + strings.Join(parts, ", ") + "}")
}

func formatScope(scope []string) string {
	sorted := slices.Clone(scope)
	slices.Sort(sorted)
	return strings.Join(slices.Compact(sorted), " ")
}
