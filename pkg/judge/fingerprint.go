package judge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// fingerprintLen truncates the hex digest; 128 bits is plenty for cache
// keying and keeps keys readable in logs and dashboards.
const fingerprintLen = 32

// Fingerprint returns a deterministic digest of an input document.
// Serialization goes through encoding/json, which emits map keys in sorted
// order, so two maps with equal contents fingerprint identically regardless
// of construction order. Array order is preserved and significant.
func Fingerprint(input map[string]any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("input is not fingerprintable: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLen], nil
}

// cacheKey builds the cache key for a request. Tenant and ruleset lead the
// key so prefix invalidation can target either scope.
func cacheKey(tenantID, rulesetID uuid.UUID, fingerprint string) string {
	return fmt.Sprintf("judgment:%s:%s:%s", tenantID, rulesetID, fingerprint)
}

// TenantPrefix returns the invalidation prefix covering every cached
// judgment for a tenant.
func TenantPrefix(tenantID uuid.UUID) string {
	return fmt.Sprintf("judgment:%s:", tenantID)
}

// RulesetPrefix returns the invalidation prefix covering every cached
// judgment for one ruleset of a tenant.
func RulesetPrefix(tenantID, rulesetID uuid.UUID) string {
	return fmt.Sprintf("judgment:%s:%s:", tenantID, rulesetID)
}
