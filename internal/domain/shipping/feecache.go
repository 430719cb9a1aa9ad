package shipping

import (
	"fmt"

	"github.com/google/uuid"
)

// FeeCacheKey is referentially transparent (same inputs -> same key) and
// distinguishes at least the five dimensions named in: shopId,
// providerCode, pickup locality, delivery locality, total weight.
func FeeCacheKey(shopID uuid.UUID, code ProviderCode, pickupCityDistrict, deliveryCityDistrict string, totalWeightGrams int) string {
	return fmt.Sprintf("fee:%s:%s:%s:%s:%d", shopID, normalize(code), pickupCityDistrict, deliveryCityDistrict, totalWeightGrams)
}
