// Package persistence provides the typed entity repository shared by every
// entity kind. It delegates addressing to the keys codec and storage to the
// ItemStore port, so the same repository runs against DynamoDB or the
// in-memory store.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pm-backend/application/ports"
	"pm-backend/infrastructure/persistence/keys"
	apperrors "pm-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Entity is the contract every stored entity satisfies
type Entity interface {
	GetID() string
	GetVersion() int
	SetVersion(v int)
	SetUpdatedAt(t time.Time)
}

// Repository provides CRUD and range-query operations for one entity kind.
// It performs no authorization and no cascading; those belong to the layers
// above it.
type Repository[T Entity] struct {
	store  ports.ItemStore
	kind   keys.Kind
	blank  func() T
	logger *zap.Logger
}

// NewRepository creates a repository for the given kind
func NewRepository[T Entity](store ports.ItemStore, kind keys.Kind, blank func() T, logger *zap.Logger) *Repository[T] {
	return &Repository[T]{
		store:  store,
		kind:   kind,
		blank:  blank,
		logger: logger,
	}
}

func (r *Repository[T]) label() string {
	return strings.ToLower(string(r.kind))
}

func (r *Repository[T]) marshal(tenantID string, entity T) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to marshal %s", r.label())).WithCause(err)
	}
	pk, sk := keys.Encode(tenantID, r.kind, entity.GetID())
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}
	return item, nil
}

func (r *Repository[T]) unmarshal(item map[string]types.AttributeValue) (T, error) {
	entity := r.blank()
	if err := attributevalue.UnmarshalMap(item, entity); err != nil {
		var zero T
		return zero, apperrors.NewInternalError(fmt.Sprintf("failed to unmarshal %s", r.label())).WithCause(err)
	}
	return entity, nil
}

// Create writes a new item. The write is conditional on the key not existing,
// so two concurrent creates of the same key yield exactly one success.
func (r *Repository[T]) Create(ctx context.Context, tenantID string, entity T) error {
	item, err := r.marshal(tenantID, entity)
	if err != nil {
		return err
	}

	err = r.store.Put(ctx, item, ports.PutCondition{MustNotExist: true})
	if err != nil {
		if errors.Is(err, ports.ErrConditionFailed) {
			return apperrors.NewAlreadyExistsError(fmt.Sprintf("%s %s", r.label(), entity.GetID()))
		}
		return apperrors.NewDatabaseError("create "+r.label(), err)
	}

	r.logger.Debug("Entity created",
		zap.String("kind", string(r.kind)),
		zap.String("id", entity.GetID()),
		zap.String("tenant", tenantID),
	)
	return nil
}

// Get retrieves an entity by id within the tenant's partition
func (r *Repository[T]) Get(ctx context.Context, tenantID, id string) (T, error) {
	var zero T
	pk, sk := keys.Encode(tenantID, r.kind, id)

	item, err := r.store.Get(ctx, pk, sk)
	if err != nil {
		if errors.Is(err, ports.ErrItemNotFound) {
			return zero, apperrors.NewNotFoundError(r.label())
		}
		return zero, apperrors.NewDatabaseError("get "+r.label(), err)
	}

	return r.unmarshal(item)
}

// List returns every entity of the repository's kind in the tenant's
// partition. Ordering is whatever the store returns; callers sort if they
// need a particular order.
func (r *Repository[T]) List(ctx context.Context, tenantID string) ([]T, error) {
	items, err := r.store.QueryPrefix(ctx, tenantID, keys.Prefix(r.kind))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list "+r.label(), err)
	}

	entities := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := r.unmarshal(item)
		if err != nil {
			r.logger.Warn("Skipping item that failed to unmarshal",
				zap.String("kind", string(r.kind)),
				zap.Error(err),
			)
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Update applies the mutator to the current entity state and writes it back
// with a version check. A concurrent writer that got in between the read and
// the write surfaces as a conflict instead of being silently overwritten.
func (r *Repository[T]) Update(ctx context.Context, tenantID, id string, mutate func(T) error) (T, error) {
	var zero T

	entity, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return zero, err
	}

	expected := entity.GetVersion()
	if err := mutate(entity); err != nil {
		return zero, err
	}
	entity.SetVersion(expected + 1)
	entity.SetUpdatedAt(time.Now())

	item, err := r.marshal(tenantID, entity)
	if err != nil {
		return zero, err
	}

	err = r.store.Put(ctx, item, ports.PutCondition{ExpectedVersion: &expected})
	if err != nil {
		if errors.Is(err, ports.ErrConditionFailed) {
			return zero, apperrors.NewConflictError(fmt.Sprintf("%s %s was modified concurrently, retry the update", r.label(), id))
		}
		return zero, apperrors.NewDatabaseError("update "+r.label(), err)
	}

	return entity, nil
}

// Delete removes an entity, failing if it does not exist
func (r *Repository[T]) Delete(ctx context.Context, tenantID, id string) error {
	pk, sk := keys.Encode(tenantID, r.kind, id)

	existed, err := r.store.Delete(ctx, pk, sk)
	if err != nil {
		return apperrors.NewDatabaseError("delete "+r.label(), err)
	}
	if !existed {
		return apperrors.NewNotFoundError(r.label())
	}
	return nil
}

// DeleteIfExists removes an entity without treating absence as an error.
// Cascades use it so a retried cascade converges on the same end state.
func (r *Repository[T]) DeleteIfExists(ctx context.Context, tenantID, id string) error {
	pk, sk := keys.Encode(tenantID, r.kind, id)

	if _, err := r.store.Delete(ctx, pk, sk); err != nil {
		return apperrors.NewDatabaseError("delete "+r.label(), err)
	}
	return nil
}
