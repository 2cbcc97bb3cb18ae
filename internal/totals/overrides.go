package totals

import (
	"fmt"
	"strconv"
	"strings"

	"ancpricing/internal/domain"
)

// ParseOverrides converts wire keys of the form "<tableId>:<itemIndex>" into
// structured keys. The split is on the last colon so table IDs may contain
// colons themselves.
func ParseOverrides(raw map[string]float64) (domain.PriceOverrideMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(domain.PriceOverrideMap, len(raw))
	for key, v := range raw {
		k, err := ParseOverrideKey(key)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ParseOverrideKey parses a single wire key.
func ParseOverrideKey(key string) (domain.OverrideKey, error) {
	i := strings.LastIndex(key, ":")
	if i <= 0 || i == len(key)-1 {
		return domain.OverrideKey{}, fmt.Errorf("%w: %q", domain.ErrInvalidOverrideKey, key)
	}
	idx, err := strconv.Atoi(key[i+1:])
	if err != nil || idx < 0 {
		return domain.OverrideKey{}, fmt.Errorf("%w: %q", domain.ErrInvalidOverrideKey, key)
	}
	return domain.OverrideKey{TableID: key[:i], ItemIndex: idx}, nil
}

// FormatOverrideKey renders a key in wire form.
func FormatOverrideKey(k domain.OverrideKey) string {
	return k.TableID + ":" + strconv.Itoa(k.ItemIndex)
}
