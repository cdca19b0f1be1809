// Package token keeps ERC-721 style non-fungible token state: ownership,
// balances, approvals and metadata URIs.
package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/types"
)

var (
	ErrUnauthorizedMint = errors.New("caller is not the contract owner")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrDuplicateToken   = errors.New("token already minted")
	ErrTokenNotFound    = errors.New("token not found")
	ErrNotTokenOwner    = errors.New("from is not the token owner")
	ErrNotAuthorized    = errors.New("caller is neither owner nor approved")
	ErrApprovalToOwner  = errors.New("approval to current owner")
)

const (
	DefaultName    = "House Listing Token"
	DefaultSymbol  = "HLT"
	DefaultBaseURI = "https://s3-us-west-2.amazonaws.com/udacity-blockchain/capstone/"
)

var (
	tokenPrefix   = []byte("t/")
	balancePrefix = []byte("b/")
	ownedPrefix   = []byte("o/")
	supplyKey     = []byte("ts")
)

// Metadata describes the collection.
type Metadata struct {
	Name    string
	Symbol  string
	BaseURI string
}

// Token is the stored state of a minted token.
type Token struct {
	Owner    common.Address
	Approved common.Address
}

// Store is the write side the ledger needs. db.WriteTx satisfies it.
type Store interface {
	db.Getter
	db.Setter
	PutIfAbsent(key, value []byte) error
	Delete(key []byte) error
}

// Ledger applies token operations to a Store. It holds no state of its own
// besides the contract owner and the collection metadata.
type Ledger struct {
	owner common.Address
	meta  Metadata
}

func New(owner common.Address, meta Metadata) *Ledger {
	if meta.Name == "" {
		meta.Name = DefaultName
	}
	if meta.Symbol == "" {
		meta.Symbol = DefaultSymbol
	}
	if meta.BaseURI == "" {
		meta.BaseURI = DefaultBaseURI
	}
	return &Ledger{owner: owner, meta: meta}
}

func (l *Ledger) Owner() common.Address { return l.owner }
func (l *Ledger) Name() string          { return l.meta.Name }
func (l *Ledger) Symbol() string        { return l.meta.Symbol }
func (l *Ledger) BaseURI() string       { return l.meta.BaseURI }

// Mint issues tokenID to to. Only the contract owner may mint.
func (l *Ledger) Mint(s Store, caller, to common.Address, tokenID types.Word) error {
	if caller != l.owner {
		return fmt.Errorf("%w: %s", ErrUnauthorizedMint, caller)
	}
	if types.IsZeroAddress(to) {
		return fmt.Errorf("%w: zero address", ErrInvalidRecipient)
	}
	tok := &Token{Owner: to}
	if err := s.PutIfAbsent(tokenKey(tokenID), encode(tok)); err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, tokenID)
		}
		return err
	}
	if err := l.addBalance(s, to, 1); err != nil {
		return err
	}
	if err := s.Set(ownedKey(to, tokenID), []byte{1}); err != nil {
		return err
	}
	supply, err := db.GetUint64(s, supplyKey)
	if err != nil {
		return err
	}
	return db.SetUint64(s, supplyKey, supply+1)
}

// TransferFrom moves tokenID from from to to. The caller must be the owner
// or the approved account. Any approval is cleared.
func (l *Ledger) TransferFrom(s Store, caller, from, to common.Address, tokenID types.Word) error {
	tok, err := l.Token(s, tokenID)
	if err != nil {
		return err
	}
	if tok.Owner != from {
		return fmt.Errorf("%w: token %s is owned by %s", ErrNotTokenOwner, tokenID, tok.Owner)
	}
	if types.IsZeroAddress(to) {
		return fmt.Errorf("%w: zero address", ErrInvalidRecipient)
	}
	if caller != tok.Owner && (types.IsZeroAddress(tok.Approved) || caller != tok.Approved) {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, caller)
	}

	if err := l.addBalance(s, from, -1); err != nil {
		return err
	}
	if err := s.Delete(ownedKey(from, tokenID)); err != nil {
		return err
	}
	if err := l.addBalance(s, to, 1); err != nil {
		return err
	}
	if err := s.Set(ownedKey(to, tokenID), []byte{1}); err != nil {
		return err
	}
	return s.Set(tokenKey(tokenID), encode(&Token{Owner: to}))
}

// Approve lets to transfer tokenID on behalf of its owner. The zero address
// clears the approval.
func (l *Ledger) Approve(s Store, caller, to common.Address, tokenID types.Word) error {
	tok, err := l.Token(s, tokenID)
	if err != nil {
		return err
	}
	if to == tok.Owner {
		return ErrApprovalToOwner
	}
	if caller != tok.Owner {
		return fmt.Errorf("%w: %s", ErrNotAuthorized, caller)
	}
	tok.Approved = to
	return s.Set(tokenKey(tokenID), encode(tok))
}

func (l *Ledger) Token(r db.Getter, tokenID types.Word) (*Token, error) {
	bz, err := r.Get(tokenKey(tokenID))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	if err != nil {
		return nil, err
	}
	tok := new(Token)
	if err := rlp.DecodeBytes(bz, tok); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenID, err)
	}
	return tok, nil
}

func (l *Ledger) OwnerOf(r db.Getter, tokenID types.Word) (common.Address, error) {
	tok, err := l.Token(r, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return tok.Owner, nil
}

func (l *Ledger) GetApproved(r db.Getter, tokenID types.Word) (common.Address, error) {
	tok, err := l.Token(r, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return tok.Approved, nil
}

func (l *Ledger) BalanceOf(r db.Getter, owner common.Address) (uint64, error) {
	return db.GetUint64(r, balanceKey(owner))
}

func (l *Ledger) TotalSupply(r db.Getter) (uint64, error) {
	return db.GetUint64(r, supplyKey)
}

// TokensOf lists the ids owned by owner in ascending order.
func (l *Ledger) TokensOf(r db.Reader, owner common.Address) ([]types.Word, error) {
	prefix := ownedPrefixOf(owner)
	var ids []types.Word
	var decodeErr error
	err := r.Iterate(prefix, func(key, _ []byte) bool {
		if len(key) != len(prefix)+32 {
			decodeErr = fmt.Errorf("malformed owned token key %x", key)
			return false
		}
		var id uint256.Int
		id.SetBytes(key[len(prefix):])
		ids = append(ids, types.Word(id))
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, decodeErr
}

// TokenURI returns the base URI followed by the decimal token id.
func (l *Ledger) TokenURI(r db.Getter, tokenID types.Word) (string, error) {
	if _, err := l.Token(r, tokenID); err != nil {
		return "", err
	}
	return l.meta.BaseURI + tokenID.String(), nil
}

func (l *Ledger) addBalance(s Store, owner common.Address, delta int) error {
	bal, err := db.GetUint64(s, balanceKey(owner))
	if err != nil {
		return err
	}
	if delta < 0 && bal < uint64(-delta) {
		return fmt.Errorf("balance underflow for %s", owner)
	}
	return db.SetUint64(s, balanceKey(owner), uint64(int64(bal)+int64(delta)))
}

func encode(tok *Token) []byte {
	bz, err := rlp.EncodeToBytes(tok)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode Token: %v", err))
	}
	return bz
}

func tokenKey(id types.Word) []byte {
	bz := id.Bytes32()
	return append(append([]byte{}, tokenPrefix...), bz[:]...)
}

func balanceKey(owner common.Address) []byte {
	return append(append([]byte{}, balancePrefix...), owner.Bytes()...)
}

func ownedPrefixOf(owner common.Address) []byte {
	return append(append([]byte{}, ownedPrefix...), owner.Bytes()...)
}

// ownedKey indexes ids by owner so TokensOf is a prefix scan. Ids are
// fixed-width big-endian, so the scan is in numeric order.
func ownedKey(owner common.Address, id types.Word) []byte {
	bz := id.Bytes32()
	return append(ownedPrefixOf(owner), bz[:]...)
}
