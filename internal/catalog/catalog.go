package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

const cacheTTL = 5 * time.Minute

// Catalog is the read-mostly lookup over bookable services. When a redis
// client is provided, reads go through it; a nil client degrades to plain
// database reads, and a failing redis is treated the same way.
type Catalog struct {
	db  *gorm.DB
	rdb *redis.Client
}

func New(db *gorm.DB, rdb *redis.Client) *Catalog {
	return &Catalog{db: db, rdb: rdb}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("service:%d", id)
}

// ByID returns the service whether or not it is still active. Slot
// enumeration and historical lookups use this variant.
func (c *Catalog) ByID(ctx context.Context, id uint) (*models.Service, error) {
	if c.rdb != nil {
		if raw, err := c.rdb.Get(ctx, cacheKey(id)).Result(); err == nil {
			var svc models.Service
			if json.Unmarshal([]byte(raw), &svc) == nil {
				return &svc, nil
			}
		}
	}

	var svc models.Service
	err := c.db.WithContext(ctx).First(&svc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("service_not_found", "Service non trouvé.")
	}
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(&svc); err == nil {
			c.rdb.Set(ctx, cacheKey(id), raw, cacheTTL)
		}
	}

	return &svc, nil
}

// ActiveByID is the booking-path lookup: an inactive service is reported as
// absent, not as a distinct state.
func (c *Catalog) ActiveByID(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := c.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, httperr.NotFoundErr("service_not_found", "Service non trouvé.")
	}
	return svc, nil
}

func (c *Catalog) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	q := c.db.WithContext(ctx).Model(&models.Service{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// Invalidate drops a service from the cache after an admin mutation.
func (c *Catalog) Invalidate(ctx context.Context, id uint) {
	if c.rdb != nil {
		c.rdb.Del(ctx, cacheKey(id))
	}
}
