package mapping

import (
	"context"
	"fmt"
	"time"

	"douban2feishu/core/cache"
	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StrategyVersion tags mappings produced by the current matching and
// creation algorithm. Bump it when the algorithm changes incompatibly so
// stale persisted mappings can be migrated or rebuilt.
const StrategyVersion = 1

// FieldError is a per-field resolution failure. It is reported alongside
// the mapping rather than failing the whole resolve call; the caller
// decides whether a missing field is fatal.
type FieldError struct {
	DomainName string `json:"domainName"`
	Message    string `json:"message"`
}

// PersistentStore is the durable side of mapping storage. *Store is the
// database implementation; tests substitute a mock.
type PersistentStore interface {
	Load(ctx context.Context, userID, targetKey string) (*models.FieldMapping, error)
	Save(ctx context.Context, userID, targetKey string, m *models.FieldMapping) error
	Delete(ctx context.Context, userID, targetKey string) error
}

// Resolver translates content-type catalogs into remote column IDs,
// creating missing columns on demand, and keeps the result in the fast
// cache and the persisted store.
type Resolver struct {
	client feishu.Client
	store  PersistentStore
	cache  cache.Store
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group
}

// NewResolver creates a resolver. ttl bounds the fast-cache lifetime of
// resolved mappings.
func NewResolver(client feishu.Client, store PersistentStore, cacheStore cache.Store, ttl time.Duration, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Resolver{
		client: client,
		store:  store,
		cache:  cacheStore,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(targetKey string) string {
	return "sync:mapping:" + targetKey
}

// resolved bundles a mapping with its per-field errors for singleflight.
type resolved struct {
	mapping *models.FieldMapping
	errs    []FieldError
}

// Resolve returns the field mapping for a target, building it if needed.
//
// Lookup order: fast cache, persisted store, live resolution against the
// remote table. Live resolution matches catalog display names against
// existing columns and creates the remainder, so re-invoking Resolve
// never creates a duplicate column for an already-mapped field.
func (r *Resolver) Resolve(ctx context.Context, userID string, target models.TargetConfig) (*models.FieldMapping, []FieldError, error) {
	fields := catalog.Fields(target.ContentType)
	targetKey := target.TargetKey()

	// Fast path: cached mapping, revalidated before use.
	var cached models.FieldMapping
	if err := r.cache.GetJSON(ctx, cacheKey(targetKey), &cached); err == nil {
		if cached.ContentType == target.ContentType && complete(&cached, fields) {
			return &cached, nil, nil
		}
	}

	// Persisted mapping, promoted to cache when complete.
	stored, err := r.store.Load(ctx, userID, targetKey)
	if err != nil {
		return nil, nil, err
	}
	if stored != nil && stored.ContentType == target.ContentType && complete(stored, fields) {
		r.writeCache(ctx, targetKey, stored)
		return stored, nil, nil
	}

	// Live resolution. Singleflight keeps concurrent resolves for the
	// same target from racing each other into duplicate column creation.
	result, err, _ := r.sf.Do(targetKey, func() (any, error) {
		m, errs, err := r.resolveLive(ctx, userID, target, stored)
		if err != nil {
			return nil, err
		}
		return resolved{mapping: m, errs: errs}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	res := result.(resolved)
	return res.mapping, res.errs, nil
}

// resolveLive lists the remote columns, matches catalog fields by display
// name, creates the missing ones, and persists the merged mapping.
// Partial creation failures are collected per field, not raised.
func (r *Resolver) resolveLive(ctx context.Context, userID string, target models.TargetConfig, stored *models.FieldMapping) (*models.FieldMapping, []FieldError, error) {
	fields := catalog.Fields(target.ContentType)
	targetKey := target.TargetKey()

	remote, err := r.client.ListFields(ctx, target.Creds, target.AppToken, target.TableID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list remote columns: %w", err)
	}

	byName := make(map[string]feishu.Field, len(remote))
	for _, f := range remote {
		if _, dup := byName[f.Name]; dup {
			// Keep the first column; a second column with the same label
			// is ambiguous and is surfaced per field below.
			continue
		}
		byName[f.Name] = f
	}

	mapping := &models.FieldMapping{
		ContentType:     target.ContentType,
		StrategyVersion: StrategyVersion,
		UpdatedAt:       time.Now(),
		Columns:         make(map[string]string, len(fields)),
	}

	var errs []FieldError
	var toCreate []catalog.Field
	claimed := make(map[string]string) // columnID -> domainName

	for _, f := range fields {
		// A previously persisted assignment wins over name matching.
		if stored != nil {
			if columnID, ok := stored.ColumnID(f.DomainName); ok {
				if owner, taken := claimed[columnID]; taken {
					errs = append(errs, FieldError{
						DomainName: f.DomainName,
						Message:    fmt.Sprintf("persisted column %s already mapped to %s", columnID, owner),
					})
					continue
				}
				mapping.Columns[f.DomainName] = columnID
				claimed[columnID] = f.DomainName
				continue
			}
		}

		remoteField, ok := byName[f.DisplayName]
		if !ok {
			toCreate = append(toCreate, f)
			continue
		}
		if owner, taken := claimed[remoteField.ID]; taken {
			errs = append(errs, FieldError{
				DomainName: f.DomainName,
				Message:    fmt.Sprintf("display name %q resolves to column %s already mapped to %s", f.DisplayName, remoteField.ID, owner),
			})
			continue
		}
		mapping.Columns[f.DomainName] = remoteField.ID
		claimed[remoteField.ID] = f.DomainName
	}

	r.createMissing(ctx, target, toCreate, mapping, &errs)

	if err := r.store.Save(ctx, userID, targetKey, mapping); err != nil {
		return nil, nil, err
	}
	r.writeCache(ctx, targetKey, mapping)

	r.logger.Info("Resolved field mapping",
		zap.String("targetKey", targetKey),
		zap.String("contentType", string(target.ContentType)),
		zap.Int("mapped", len(mapping.Columns)),
		zap.Int("created", len(toCreate)),
		zap.Int("errors", len(errs)),
	)

	return mapping, errs, nil
}

// createMissing creates queued columns one at a time with an adaptive
// delay in between. Schema mutation is the most rate-sensitive endpoint,
// so creation is deliberately serialized rather than parallelized.
func (r *Resolver) createMissing(ctx context.Context, target models.TargetConfig, toCreate []catalog.Field, mapping *models.FieldMapping, errs *[]FieldError) {
	delay := smartDelay(len(toCreate))

	for i, f := range toCreate {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				*errs = append(*errs, FieldError{DomainName: f.DomainName, Message: ctx.Err().Error()})
				return
			case <-time.After(delay):
			}
		}

		created, err := r.client.CreateField(ctx, target.Creds, target.AppToken, target.TableID, fieldSpecFor(f))
		if err != nil {
			r.logger.Warn("Failed to create remote column",
				zap.String("domainName", f.DomainName),
				zap.String("displayName", f.DisplayName),
				zap.Error(err),
			)
			*errs = append(*errs, FieldError{DomainName: f.DomainName, Message: err.Error()})
			continue
		}
		mapping.Columns[f.DomainName] = created.ID
	}
}

// smartDelay sizes the pause between consecutive column creations to the
// queue length. One or two columns go through undelayed.
func smartDelay(queued int) time.Duration {
	switch {
	case queued <= 2:
		return 0
	case queued <= 5:
		return 300 * time.Millisecond
	case queued <= 10:
		return 500 * time.Millisecond
	default:
		return time.Second
	}
}

// fieldSpecFor maps a catalog field onto the remote column type system.
func fieldSpecFor(f catalog.Field) feishu.FieldSpec {
	switch f.Kind {
	case catalog.KindNumber:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeNumber, Property: map[string]any{"formatter": "0.0"}}
	case catalog.KindRating:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeNumber, UIType: feishu.UITypeRating, Property: map[string]any{"formatter": "0", "rating": map[string]any{"symbol": "star"}}}
	case catalog.KindDate:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeDate, Property: map[string]any{"date_formatter": "yyyy/MM/dd"}}
	case catalog.KindSingleSelect:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeSingleSelect}
	case catalog.KindURL:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeURL}
	default:
		return feishu.FieldSpec{Name: f.DisplayName, Type: feishu.FieldTypeText}
	}
}

// complete reports whether every catalog field has a column assignment.
func complete(m *models.FieldMapping, fields []catalog.Field) bool {
	for _, f := range fields {
		if _, ok := m.ColumnID(f.DomainName); !ok {
			return false
		}
	}
	return true
}

// writeCache stores a mapping in the fast cache; failures only log.
func (r *Resolver) writeCache(ctx context.Context, targetKey string, m *models.FieldMapping) {
	if err := r.cache.SetJSON(ctx, cacheKey(targetKey), m, r.ttl); err != nil {
		r.logger.Warn("Failed to cache mapping", zap.String("targetKey", targetKey), zap.Error(err))
	}
}

// ClearCache drops the cached mapping for a target. The persisted mapping
// is untouched; the next Resolve rebuilds the cache from it.
func (r *Resolver) ClearCache(ctx context.Context, targetKey string) error {
	return r.cache.Del(ctx, cacheKey(targetKey))
}
