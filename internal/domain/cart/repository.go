// internal/domain/cart/repository.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/shop-backend/internal/config"
	"gorm.io/gorm"
)

// Repository abstracts line item storage for a single cart owner. Two
// implementations exist: a database-backed one for authenticated users and a
// Redis-backed one for guest sessions. The service selects one per call
// through a RepositoryFactory, so the operations themselves are mode-agnostic.
type Repository interface {
	// List returns every line item in the cart, oldest first.
	List(ctx context.Context) ([]LineItem, error)
	// Save inserts the line item or replaces the stored line with the same ID.
	Save(ctx context.Context, item LineItem) error
	// Delete removes the line item; deleting an unknown ID is a no-op.
	Delete(ctx context.Context, itemID string) error
	// Clear removes every line item in the cart.
	Clear(ctx context.Context) error
}

// RepositoryFactory selects the backing store for a request: server-side for
// authenticated users, session-scoped Redis for guests
type RepositoryFactory func(userID *uint, sessionID string) (Repository, error)

// NewRepositoryFactory builds the production factory over gorm and Redis
func NewRepositoryFactory(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) RepositoryFactory {
	return func(userID *uint, sessionID string) (Repository, error) {
		if userID != nil {
			return &serverRepository{db: db, userID: *userID}, nil
		}
		if sessionID == "" {
			return nil, fmt.Errorf("session ID required for guest cart")
		}
		return &guestRepository{
			redisClient: redisClient,
			sessionID:   sessionID,
			ttl:         cfg.Cart.GuestCartTTL,
		}, nil
	}
}

// serverRepository stores cart lines in the cart_lines table
type serverRepository struct {
	db     *gorm.DB
	userID uint
}

func (r *serverRepository) List(ctx context.Context) ([]LineItem, error) {
	var rows []CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", r.userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}

	items := make([]LineItem, len(rows))
	for i, row := range rows {
		items[i] = row.toLineItem()
	}
	return items, nil
}

func (r *serverRepository) Save(ctx context.Context, item LineItem) error {
	row := fromLineItem(r.userID, item)

	var existing CartLine
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", item.ID, r.userID).
		First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create cart line: %w", err)
		}
		return nil
	} else if result.Error != nil {
		return fmt.Errorf("failed to look up cart line: %w", result.Error)
	}

	err := r.db.WithContext(ctx).Model(&existing).Updates(updateColumns(row)).Error
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	return nil
}

// updateColumns lists the mutable columns written when a stored line is
// replaced; identity and ownership columns never change
func updateColumns(row CartLine) map[string]interface{} {
	return map[string]interface{}{
		"name":              row.Name,
		"quantity":          row.Quantity,
		"price":             row.Price,
		"original_price":    row.OriginalPrice,
		"applied_discounts": row.AppliedDiscounts,
	}
}

func (r *serverRepository) Delete(ctx context.Context, itemID string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, r.userID).
		Delete(&CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}

func (r *serverRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", r.userID).
		Delete(&CartLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// guestRepository stores the whole cart as one JSON blob in Redis, refreshed
// with the configured TTL on every write
type guestRepository struct {
	redisClient *redis.Client
	sessionID   string
	ttl         time.Duration
}

func (r *guestRepository) key() string {
	return fmt.Sprintf("cart:session:%s", r.sessionID)
}

func (r *guestRepository) load(ctx context.Context) (*SessionCart, error) {
	data, err := r.redisClient.Get(ctx, r.key()).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: r.sessionID,
			Items:     []LineItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve guest cart: %w", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &sessionCart, nil
}

func (r *guestRepository) store(ctx context.Context, sessionCart *SessionCart) error {
	sessionCart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sessionCart)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}

	if err := r.redisClient.Set(ctx, r.key(), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

func (r *guestRepository) List(ctx context.Context) ([]LineItem, error) {
	sessionCart, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return sessionCart.Items, nil
}

func (r *guestRepository) Save(ctx context.Context, item LineItem) error {
	sessionCart, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ID == item.ID {
			sessionCart.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		sessionCart.Items = append(sessionCart.Items, item)
	}

	return r.store(ctx, sessionCart)
}

func (r *guestRepository) Delete(ctx context.Context, itemID string) error {
	sessionCart, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range sessionCart.Items {
		if sessionCart.Items[i].ID == itemID {
			sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			return r.store(ctx, sessionCart)
		}
	}

	// Unknown ID: nothing to do
	return nil
}

func (r *guestRepository) Clear(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}
