package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/quickshop/quickshop/internal/redisx"
)

var ErrInvalidQuantity = errors.New("cart quantity must not be negative")

// Line is one cart entry. Size is empty for products without variants.
type Line struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Store keeps one redis hash per cart key. Carts are advisory: checkout
// re-validates every line against the catalog inside its transaction.
type Store struct {
	Redis *redis.Client
}

func field(productID int64, size string) string {
	if size == "" {
		return strconv.FormatInt(productID, 10)
	}
	return fmt.Sprintf("%d|%s", productID, size)
}

func parseField(f string) (int64, string, error) {
	id64 := f
	size := ""
	if i := strings.IndexByte(f, '|'); i >= 0 {
		id64, size = f[:i], f[i+1:]
	}
	id, err := strconv.ParseInt(id64, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad cart field %q: %w", f, err)
	}
	return id, size, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]Line, error) {
	m, err := s.Redis.HGetAll(ctx, fmt.Sprintf(redisx.KeyCart, key)).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(m))
	for f, v := range m {
		id, size, err := parseField(f)
		if err != nil {
			return nil, err
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bad cart quantity %q: %w", v, err)
		}
		lines = append(lines, Line{ProductID: id, Size: size, Quantity: qty})
	}
	// redis hashes are unordered; keep the response stable
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].Size < lines[j].Size
	})
	return lines, nil
}

// SetItem writes the absolute quantity for one product+size; zero
// removes the entry. Every write refreshes the cart TTL.
func (s *Store) SetItem(ctx context.Context, key string, line Line) error {
	if line.Quantity < 0 {
		return ErrInvalidQuantity
	}
	k := fmt.Sprintf(redisx.KeyCart, key)
	f := field(line.ProductID, line.Size)

	if line.Quantity == 0 {
		if err := s.Redis.HDel(ctx, k, f).Err(); err != nil {
			return err
		}
	} else if err := s.Redis.HSet(ctx, k, f, line.Quantity).Err(); err != nil {
		return err
	}
	return s.Redis.Expire(ctx, k, redisx.TTLCart).Err()
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCart, key)).Err()
}
