// Package keys maps domain references onto the single-table partition/sort
// key scheme. Every item belonging to a tenant shares the tenant's account id
// as partition key; the sort key is "KIND#id" so one begins_with query returns
// all items of a kind inside the partition.
package keys

import (
	"strings"

	apperrors "pm-backend/pkg/errors"
)

// Kind identifies the entity kind encoded in a sort key.
type Kind string

const (
	KindProject Kind = "PROJECT"
	KindTask    Kind = "TASK"
	KindAccount Kind = "ACCOUNT"
)

// AccountPartition is the fixed partition holding the account directory.
// Accounts are not owned by a tenant; their email is itself the tenant id for
// the projects they own.
const AccountPartition = "ACCOUNT"

const separator = "#"

// Encode returns the partition and sort key for a (tenant, kind, id) triple.
func Encode(tenantID string, kind Kind, id string) (pk, sk string) {
	return tenantID, string(kind) + separator + id
}

// Decode parses a sort key back into its kind and id.
func Decode(sk string) (Kind, string, error) {
	idx := strings.Index(sk, separator)
	if idx <= 0 || idx == len(sk)-1 {
		return "", "", apperrors.NewValidationError("malformed sort key: " + sk)
	}
	kind := Kind(sk[:idx])
	switch kind {
	case KindProject, KindTask, KindAccount:
		return kind, sk[idx+1:], nil
	default:
		return "", "", apperrors.NewValidationError("malformed sort key: unknown kind in " + sk)
	}
}

// Prefix returns the begins_with predicate value for a kind.
func Prefix(kind Kind) string {
	return string(kind) + separator
}
