package ports

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrItemNotFound is returned by Get when no item exists at the key.
	ErrItemNotFound = errors.New("item not found")
	// ErrConditionFailed is returned by Put when its condition did not hold.
	ErrConditionFailed = errors.New("conditional write failed")
)

// PutCondition constrains a Put. The zero value is an unconditional write,
// which no caller in this codebase uses for creates: every create must assert
// the key does not already exist.
type PutCondition struct {
	// MustNotExist requires that no item with the same key exists.
	MustNotExist bool
	// ExpectedVersion, when set, requires the stored item's Version attribute
	// to equal the given value. Used for optimistic concurrency on updates.
	ExpectedVersion *int
}

// ItemStore is the single port to the underlying key-value store. Items are
// attribute maps carrying at least PK, SK and Version attributes. Reads are
// strongly consistent: a Put is visible to a Get or QueryPrefix issued
// immediately after by the same process.
type ItemStore interface {
	Put(ctx context.Context, item map[string]types.AttributeValue, cond PutCondition) error
	Get(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error)
	QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error)
	// Delete removes the item and reports whether it existed. Deleting an
	// absent item is not an error so cascades can be retried safely.
	Delete(ctx context.Context, pk, sk string) (bool, error)
}
