package service

import (
	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

// RepairService is the single access point views consume: the query cache
// and the mutation operations composed over one shared cache, so all
// consumers observe the same state. It adds no logic of its own.
type RepairService struct {
	*RepairQuery
	*RepairMutation
}

func NewRepairService(log zerolog.Logger, repairs repository.RepairRepository, profiles repository.UserRepository, notify Notifier) *RepairService {
	q := NewRepairQuery(log, repairs, profiles)
	m := NewRepairMutation(log, repairs, profiles, q, notify)
	return &RepairService{RepairQuery: q, RepairMutation: m}
}
