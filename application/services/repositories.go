package services

import (
	"pm-backend/application/ports"
	"pm-backend/domain/core/entities"
	"pm-backend/infrastructure/persistence"
	"pm-backend/infrastructure/persistence/keys"

	"go.uber.org/zap"
)

// Repositories bundles the typed repositories the services operate on.
// Accounts live in the fixed directory partition; projects and tasks share
// the owning account's partition.
type Repositories struct {
	Accounts *persistence.Repository[*entities.Account]
	Projects *persistence.Repository[*entities.Project]
	Tasks    *persistence.Repository[*entities.Task]
}

// NewRepositories wires the typed repositories onto one item store
func NewRepositories(store ports.ItemStore, logger *zap.Logger) *Repositories {
	return &Repositories{
		Accounts: persistence.NewRepository(store, keys.KindAccount, func() *entities.Account { return &entities.Account{} }, logger),
		Projects: persistence.NewRepository(store, keys.KindProject, func() *entities.Project { return &entities.Project{} }, logger),
		Tasks:    persistence.NewRepository(store, keys.KindTask, func() *entities.Task { return &entities.Task{} }, logger),
	}
}
