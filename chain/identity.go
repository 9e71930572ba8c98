package chain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Claim topics are fixed protocol constants.
const (
	ClaimAccredited  = 1
	ClaimKYCVerified = 2
)

type identityRecord struct {
	verified bool
	country  uint16
	claims   map[uint]bool
}

// IdentityRegistry tracks verified investor identities, their country codes
// and claim topics, and resolves secondary wallets to a primary identity.
// All mutators are restricted to the registry owner; reads are open.
type IdentityRegistry struct {
	owner      common.Address
	identities map[common.Address]*identityRecord
	index      []common.Address
	links      map[common.Address]common.Address // secondary -> primary
}

func NewIdentityRegistry(owner common.Address) *IdentityRegistry {
	return &IdentityRegistry{
		owner:      owner,
		identities: make(map[common.Address]*identityRecord),
		links:      make(map[common.Address]common.Address),
	}
}

func (r *IdentityRegistry) onlyOwner(tx *TxContext) error {
	if tx.Caller != r.owner {
		return revert(ErrUnauthorized, "caller is not the registry owner")
	}
	return nil
}

func (r *IdentityRegistry) RegisterIdentity(tx *TxContext, addr common.Address, country uint16) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	if addr == (common.Address{}) {
		return revert(ErrInvalidParameter, "identity address is zero")
	}
	rec, existed := r.identities[addr]
	if existed && rec.verified {
		return revert(ErrInvalidState, "identity already registered")
	}
	r.identities[addr] = &identityRecord{
		verified: true,
		country:  country,
		claims:   make(map[uint]bool),
	}
	// a soft-removed identity keeps its enumeration slot
	if !existed {
		r.index = append(r.index, addr)
	}
	tx.Emit("IdentityRegistered", map[string]any{
		"identity": addr,
		"country":  country,
	})
	return nil
}

// BatchRegisterIdentities registers parallel address/country arrays in one
// transaction; a length mismatch or any per-entry failure reverts the batch.
func (r *IdentityRegistry) BatchRegisterIdentities(tx *TxContext, addrs []common.Address, countries []uint16) error {
	if len(addrs) != len(countries) {
		return revert(ErrInvalidParameter, "address and country arrays length mismatch")
	}
	for i := range addrs {
		if err := r.RegisterIdentity(tx, addrs[i], countries[i]); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIdentity soft-deletes: the record stays for history but no longer
// verifies. The enumeration index keeps the address.
func (r *IdentityRegistry) RemoveIdentity(tx *TxContext, addr common.Address) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	rec, ok := r.identities[addr]
	if !ok || !rec.verified {
		return revert(ErrNotFound, "identity not registered")
	}
	rec.verified = false
	tx.Emit("IdentityRemoved", map[string]any{"identity": addr})
	return nil
}

func (r *IdentityRegistry) AddClaim(tx *TxContext, addr common.Address, topic uint) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	rec, ok := r.identities[addr]
	if !ok || !rec.verified {
		return revert(ErrNotFound, "identity not registered")
	}
	if rec.claims[topic] {
		return revert(ErrInvalidState, "claim already present")
	}
	rec.claims[topic] = true
	tx.Emit("ClaimAdded", map[string]any{"identity": addr, "topic": topic})
	return nil
}

func (r *IdentityRegistry) RemoveClaim(tx *TxContext, addr common.Address, topic uint) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	rec, ok := r.identities[addr]
	if !ok || !rec.verified {
		return revert(ErrNotFound, "identity not registered")
	}
	if !rec.claims[topic] {
		return revert(ErrNotFound, "claim not present")
	}
	delete(rec.claims, topic)
	tx.Emit("ClaimRemoved", map[string]any{"identity": addr, "topic": topic})
	return nil
}

func (r *IdentityRegistry) UpdateCountry(tx *TxContext, addr common.Address, country uint16) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	rec, ok := r.identities[addr]
	if !ok || !rec.verified {
		return revert(ErrNotFound, "identity not registered")
	}
	rec.country = country
	tx.Emit("CountryUpdated", map[string]any{"identity": addr, "country": country})
	return nil
}

// LinkWallet points a secondary wallet at a primary identity. Verification and
// claim lookups on the secondary resolve through the primary from then on.
func (r *IdentityRegistry) LinkWallet(tx *TxContext, primary, secondary common.Address) error {
	if err := r.onlyOwner(tx); err != nil {
		return err
	}
	if secondary == (common.Address{}) {
		return revert(ErrInvalidParameter, "secondary wallet address is zero")
	}
	r.links[secondary] = primary
	tx.Emit("WalletLinked", map[string]any{"primary": primary, "secondary": secondary})
	return nil
}

// resolve follows a wallet link if one exists.
func (r *IdentityRegistry) resolve(addr common.Address) common.Address {
	if primary, ok := r.links[addr]; ok && primary != (common.Address{}) {
		return primary
	}
	return addr
}

func (r *IdentityRegistry) IsVerified(addr common.Address) bool {
	rec, ok := r.identities[r.resolve(addr)]
	return ok && rec.verified
}

func (r *IdentityRegistry) HasClaim(addr common.Address, topic uint) bool {
	rec, ok := r.identities[r.resolve(addr)]
	return ok && rec.verified && rec.claims[topic]
}

func (r *IdentityRegistry) GetCountry(addr common.Address) (uint16, error) {
	rec, ok := r.identities[r.resolve(addr)]
	if !ok {
		return 0, revert(ErrNotFound, "identity not registered")
	}
	return rec.country, nil
}

func (r *IdentityRegistry) IdentityCount() int {
	return len(r.index)
}

func (r *IdentityRegistry) IdentityAt(i int) (common.Address, error) {
	if i < 0 || i >= len(r.index) {
		return common.Address{}, revert(ErrInvalidParameter, "identity index out of range")
	}
	return r.index[i], nil
}

type identityState struct {
	identities map[common.Address]*identityRecord
	index      []common.Address
	links      map[common.Address]common.Address
}

func (r *IdentityRegistry) snapshot() any {
	ids := make(map[common.Address]*identityRecord, len(r.identities))
	for a, rec := range r.identities {
		claims := make(map[uint]bool, len(rec.claims))
		for t, v := range rec.claims {
			claims[t] = v
		}
		ids[a] = &identityRecord{verified: rec.verified, country: rec.country, claims: claims}
	}
	links := make(map[common.Address]common.Address, len(r.links))
	for s, p := range r.links {
		links[s] = p
	}
	index := make([]common.Address, len(r.index))
	copy(index, r.index)
	return &identityState{identities: ids, index: index, links: links}
}

func (r *IdentityRegistry) restore(s any) {
	st := s.(*identityState)
	r.identities = st.identities
	r.index = st.index
	r.links = st.links
}
