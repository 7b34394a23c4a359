package ledger

import (
	"github.com/gagliardetto/solana-go"

	"github.com/binfi-labs/dlmm-go/pkg/dlmm"
)

// Registry is the shared mutable configuration the core consults:
// the admin list, the per-bin-step factor tables, and the public
// pool-creation toggle. It is passed into the engine by reference so
// tests can inject fixtures instead of relying on ambient globals.
type Registry struct {
	deployer           solana.PublicKey
	admins             []solana.PublicKey
	factors            map[uint64]dlmm.FactorTable
	PublicPoolCreation bool

	nextPoolID uint64
}

// NewRegistry creates a registry whose deployer is a permanent admin.
func NewRegistry(deployer solana.PublicKey) *Registry {
	return &Registry{
		deployer:   deployer,
		admins:     []solana.PublicKey{deployer},
		factors:    make(map[uint64]dlmm.FactorTable),
		nextPoolID: 1,
	}
}

// Deployer returns the permanent admin.
func (r *Registry) Deployer() solana.PublicKey {
	return r.deployer
}

// IsAdmin reports whether addr is in the admin list.
func (r *Registry) IsAdmin(addr solana.PublicKey) bool {
	for _, admin := range r.admins {
		if admin.Equals(addr) {
			return true
		}
	}
	return false
}

// Admins returns a copy of the admin list.
func (r *Registry) Admins() []solana.PublicKey {
	out := make([]solana.PublicKey, len(r.admins))
	copy(out, r.admins)
	return out
}

// AddAdmin appends addr to the admin list.
func (r *Registry) AddAdmin(addr solana.PublicKey) error {
	if r.IsAdmin(addr) {
		return dlmm.ErrAlreadyAdmin
	}
	if len(r.admins) >= dlmm.MaxAdmins {
		return dlmm.ErrAdminLimitReached
	}
	r.admins = append(r.admins, addr)
	return nil
}

// RemoveAdmin removes addr from the admin list. The deployer is not
// removable.
func (r *Registry) RemoveAdmin(addr solana.PublicKey) error {
	if addr.Equals(r.deployer) {
		return dlmm.ErrCannotRemoveDeployer
	}
	for i, admin := range r.admins {
		if admin.Equals(addr) {
			r.admins = append(r.admins[:i], r.admins[i+1:]...)
			return nil
		}
	}
	return dlmm.ErrAdminNotInList
}

// AddBinStep registers a validated factor table for a bin step.
func (r *Registry) AddBinStep(binStep uint64, factors dlmm.FactorTable) error {
	if _, ok := r.factors[binStep]; ok {
		return dlmm.ErrAlreadyBinStep
	}
	if len(r.factors) >= dlmm.MaxBinSteps {
		return dlmm.ErrBinStepLimitReached
	}
	if err := dlmm.ValidateBinFactors(binStep, factors); err != nil {
		return err
	}
	r.factors[binStep] = factors
	return nil
}

// Factors returns the factor table registered for binStep.
func (r *Registry) Factors(binStep uint64) (dlmm.FactorTable, error) {
	factors, ok := r.factors[binStep]
	if !ok {
		return nil, dlmm.ErrNoBinFactors
	}
	return factors, nil
}

// BinSteps lists the registered bin steps.
func (r *Registry) BinSteps() []uint64 {
	out := make([]uint64, 0, len(r.factors))
	for step := range r.factors {
		out = append(out, step)
	}
	return out
}

// NextPoolID hands out the next pool id.
func (r *Registry) NextPoolID() uint64 {
	id := r.nextPoolID
	r.nextPoolID++
	return id
}
