package contracts

import (
	"sync"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
)

// Registry holds the contracts deployed on a ledger
type Registry struct {
	lock        sync.RWMutex
	contracts   map[externalapi.DomainHash]model.Contract
	order       []*externalapi.DomainHash
	deployments map[externalapi.PublicIdentity]uint64
}

var _ model.ContractRegistry = (*Registry)(nil)

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		contracts:   make(map[externalapi.DomainHash]model.Contract),
		deployments: make(map[externalapi.PublicIdentity]uint64),
	}
}

// Deploy derives a fresh address for a contract created by creator, builds
// the contract with newContract and registers it under that address.
func (r *Registry) Deploy(creator externalapi.PublicIdentity,
	newContract func(address *externalapi.DomainHash) model.Contract) model.Contract {

	r.lock.Lock()
	defer r.lock.Unlock()

	sequence := r.deployments[creator]
	r.deployments[creator] = sequence + 1

	address := consensushashing.ContractAddress(creator, sequence)
	contract := newContract(address)
	r.contracts[*address] = contract
	r.order = append(r.order, address)

	log.Debugf("Deployed contract %s by %s", address, creator)
	return contract
}

// Contract returns the contract deployed at address
func (r *Registry) Contract(address *externalapi.DomainHash) (model.Contract, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	contract, ok := r.contracts[*address]
	return contract, ok
}

// Contracts returns every deployed contract in deployment order
func (r *Registry) Contracts() []model.Contract {
	r.lock.RLock()
	defer r.lock.RUnlock()

	contracts := make([]model.Contract, len(r.order))
	for i, address := range r.order {
		contracts[i] = r.contracts[*address]
	}
	return contracts
}
