package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// flagRecord is the persistent record of one registered flag. Entries are
// created by the admin surface and never destroyed.
type flagRecord struct {
	id           *big.Int
	category     domain.Category
	price        *big.Int // per single token, immutable
	nftsRequired uint8

	firstMinted  bool
	secondMinted bool
	pairComplete bool

	firstOwner  common.Address
	secondOwner common.Address

	firstMintedCount  uint8
	secondMintedCount uint8

	// lowest token id minted in each phase, kept for single-token compatibility
	firstTokenID  uint64
	secondTokenID uint64

	firstTokens  []uint64
	secondTokens []uint64

	metadataHash string
}

// tokenRecord is the side-table entry of one minted token.
type tokenRecord struct {
	owner    common.Address
	flagID   *big.Int
	first    bool // phase-1 marker
	approved common.Address
}

// state is the whole persistent storage of the contract. All mutation goes
// through txn-journaled writes so a failed transaction can unwind.
type state struct {
	flags     map[string]*flagRecord
	flagOrder []*big.Int // insertion order of registered ids

	tokens      map[uint64]*tokenRecord
	ownerTokens map[common.Address][]uint64
	operators   map[common.Address]map[common.Address]bool

	hasPlus    map[common.Address]bool
	hasPremium map[common.Address]bool

	totalMinted uint64
	balance     *big.Int
	baseURI     string
}

func newState() *state {
	return &state{
		flags:       make(map[string]*flagRecord),
		tokens:      make(map[uint64]*tokenRecord),
		ownerTokens: make(map[common.Address][]uint64),
		operators:   make(map[common.Address]map[common.Address]bool),
		hasPlus:     make(map[common.Address]bool),
		hasPremium:  make(map[common.Address]bool),
		balance:     new(big.Int),
	}
}

func (s *state) flag(id *big.Int) *flagRecord {
	return s.flags[domain.FlagKey(id)]
}

// txn journals the writes and events of one in-flight transaction. Undo
// entries run in reverse order on revert, restoring every touched value.
type txn struct {
	undo   []func()
	events []events.Event
}

func newTxn() *txn {
	return &txn{}
}

func (t *txn) onRevert(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *txn) emit(e events.Event) {
	t.events = append(t.events, e)
}

func (t *txn) revert() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.events = nil
}

// Journaled write helpers. Each captures the prior value before mutating.

func (s *state) insertFlag(t *txn, rec *flagRecord) {
	key := domain.FlagKey(rec.id)
	s.flags[key] = rec
	s.flagOrder = append(s.flagOrder, rec.id)
	t.onRevert(func() {
		delete(s.flags, key)
		s.flagOrder = s.flagOrder[:len(s.flagOrder)-1]
	})
}

// snapshotFlag captures a flag record before a phase transition mutates it.
// The whole record is restored on revert, including its token id lists.
func (s *state) snapshotFlag(t *txn, rec *flagRecord) {
	saved := *rec
	saved.firstTokens = append([]uint64{}, rec.firstTokens...)
	saved.secondTokens = append([]uint64{}, rec.secondTokens...)
	t.onRevert(func() { *rec = saved })
}

func (s *state) setMetadataHash(t *txn, rec *flagRecord, hash string) {
	prev := rec.metadataHash
	rec.metadataHash = hash
	t.onRevert(func() { rec.metadataHash = prev })
}

func (s *state) setBaseURI(t *txn, baseURI string) {
	prev := s.baseURI
	s.baseURI = baseURI
	t.onRevert(func() { s.baseURI = prev })
}

// insertToken mints a token record and indexes it under its owner
func (s *state) insertToken(t *txn, tokenID uint64, rec *tokenRecord) {
	s.tokens[tokenID] = rec
	s.ownerTokens[rec.owner] = append(s.ownerTokens[rec.owner], tokenID)
	s.totalMinted++
	t.onRevert(func() {
		delete(s.tokens, tokenID)
		owned := s.ownerTokens[rec.owner]
		s.ownerTokens[rec.owner] = owned[:len(owned)-1]
		s.totalMinted--
	})
}

// moveToken reassigns token ownership and clears its per-token approval
func (s *state) moveToken(t *txn, tokenID uint64, rec *tokenRecord, to common.Address) {
	prevOwner := rec.owner
	prevApproved := rec.approved
	prevFromList := s.ownerTokens[prevOwner]
	prevToList := s.ownerTokens[to]

	rec.owner = to
	rec.approved = common.Address{}
	s.ownerTokens[prevOwner] = removeTokenID(prevFromList, tokenID)
	s.ownerTokens[to] = append(append([]uint64{}, prevToList...), tokenID)

	t.onRevert(func() {
		rec.owner = prevOwner
		rec.approved = prevApproved
		s.ownerTokens[prevOwner] = prevFromList
		s.ownerTokens[to] = prevToList
	})
}

func (s *state) setApproved(t *txn, rec *tokenRecord, approved common.Address) {
	prev := rec.approved
	rec.approved = approved
	t.onRevert(func() { rec.approved = prev })
}

func (s *state) setOperator(t *txn, owner, operator common.Address, approved bool) {
	prevMap := s.operators[owner]
	prev, had := false, false
	if prevMap != nil {
		prev, had = prevMap[operator]
	}
	if s.operators[owner] == nil {
		s.operators[owner] = make(map[common.Address]bool)
	}
	s.operators[owner][operator] = approved
	t.onRevert(func() {
		if had {
			s.operators[owner][operator] = prev
		} else {
			delete(s.operators[owner], operator)
		}
	})
}

func (s *state) grantPlus(t *txn, user common.Address) {
	s.hasPlus[user] = true
	t.onRevert(func() { delete(s.hasPlus, user) })
}

func (s *state) grantPremium(t *txn, user common.Address) {
	s.hasPremium[user] = true
	t.onRevert(func() { delete(s.hasPremium, user) })
}

func (s *state) addBalance(t *txn, amount *big.Int) {
	prev := new(big.Int).Set(s.balance)
	s.balance = new(big.Int).Add(s.balance, amount)
	t.onRevert(func() { s.balance = prev })
}

func (s *state) setBalance(t *txn, amount *big.Int) {
	prev := s.balance
	s.balance = new(big.Int).Set(amount)
	t.onRevert(func() { s.balance = prev })
}

// removeTokenID drops one id from an owner's enumeration list, preserving
// the order of the remaining entries
func removeTokenID(list []uint64, tokenID uint64) []uint64 {
	out := make([]uint64, 0, len(list))
	for _, id := range list {
		if id != tokenID {
			out = append(out, id)
		}
	}
	return out
}
