// Package ledger hosts the solution registry and the token ledger on one
// database and runs every mutating operation as a single serialized
// transaction.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/log"
	"github.com/kysee/zknft/metrics"
	"github.com/kysee/zknft/registry"
	"github.com/kysee/zknft/token"
	"github.com/kysee/zknft/types"
	"github.com/kysee/zknft/verifier"
)

type Config struct {
	// Owner is the contract owner, the only account allowed to mint.
	Owner    common.Address
	Metadata token.Metadata
	// Verifier defaults to verifier.AcceptAll.
	Verifier  verifier.Verifier
	CacheSize int
}

type Ledger struct {
	db       db.Database
	registry *registry.Registry
	tokens   *token.Ledger
	verifier verifier.Verifier

	// mu serializes writers. Queries read committed state without it.
	mu sync.Mutex
}

func New(database db.Database, conf *Config) (*Ledger, error) {
	if database == nil {
		return nil, fmt.Errorf("missing database")
	}
	if types.IsZeroAddress(conf.Owner) {
		return nil, fmt.Errorf("missing contract owner")
	}
	reg, err := registry.New(conf.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}
	v := conf.Verifier
	if v == nil {
		log.Warnw("no proof verifier configured, every proof will be accepted")
		v = verifier.AcceptAll
	}
	return &Ledger{
		db:       database,
		registry: reg,
		tokens:   token.New(conf.Owner, conf.Metadata),
		verifier: v,
	}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// BuildKey derives the solution key of a proof for to.
func (l *Ledger) BuildKey(to common.Address, proof types.Proof, inputs []types.Word) common.Hash {
	return registry.KeyOf(to, proof, inputs)
}

// CheckIfSolutionExists reports whether key has been used. It never writes.
func (l *Ledger) CheckIfSolutionExists(key common.Hash) (bool, error) {
	exists, err := l.registry.CheckIfSolutionExists(l.db, key)
	if err != nil {
		return false, err
	}
	if exists {
		l.registry.Remember(key)
	}
	return exists, nil
}

func (l *Ledger) Solution(key common.Hash) (*registry.Solution, error) {
	return l.registry.Solution(l.db, key)
}

func (l *Ledger) SolutionCount() (uint64, error) {
	return l.registry.Count(l.db)
}

// AddSolution verifies proof and records its solution for to without
// minting.
func (l *Ledger) AddSolution(to common.Address, proof types.Proof, inputs []types.Word) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.verify(proof, inputs); err != nil {
		return nil, err
	}
	wTx := l.db.WriteTx()
	defer wTx.Discard()

	key, sol, err := l.registry.AddSolution(wTx, to, proof.A, proof.B, proof.C, inputs)
	if err != nil {
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		log.Errorw(err, "failed to commit solution")
		return nil, fmt.Errorf("failed to commit solution: %w", err)
	}
	l.registry.Remember(key)
	metrics.SolutionsAdded.Inc()

	r := newReceipt()
	r.Key = &key
	r.Events = append(r.Events, solutionAdded(sol.Index, to))
	log.Infow("solution added", "key", key.Hex(), "index", sol.Index, "to", to.Hex(), "tx", r.TxID.String())
	return r, nil
}

// MintNFT verifies proof, records its solution for to and mints tokenID to
// to, all in one transaction. Nothing is written unless every step succeeds.
func (l *Ledger) MintNFT(caller, to common.Address, tokenID types.Word, proof types.Proof, inputs []types.Word) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.verify(proof, inputs); err != nil {
		metrics.Mints.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}
	wTx := l.db.WriteTx()
	defer wTx.Discard()

	key, sol, err := l.registry.AddSolution(wTx, to, proof.A, proof.B, proof.C, inputs)
	if err != nil {
		if errors.Is(err, registry.ErrDuplicateSolution) {
			metrics.Mints.WithLabelValues(metrics.ResultDuplicate).Inc()
		} else {
			metrics.Mints.WithLabelValues(metrics.ResultStoreFailed).Inc()
		}
		return nil, err
	}
	if err := l.tokens.Mint(wTx, caller, to, tokenID); err != nil {
		metrics.Mints.WithLabelValues(metrics.ResultRejected).Inc()
		log.Debugw("mint rejected, discarding solution", "key", key.Hex(), "error", err.Error())
		return nil, err
	}
	if err := l.registry.MarkMinted(wTx, key, tokenID); err != nil {
		metrics.Mints.WithLabelValues(metrics.ResultStoreFailed).Inc()
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		metrics.Mints.WithLabelValues(metrics.ResultStoreFailed).Inc()
		log.Errorw(err, "failed to commit mint")
		return nil, fmt.Errorf("failed to commit mint: %w", err)
	}
	l.registry.Remember(key)
	metrics.SolutionsAdded.Inc()
	metrics.Mints.WithLabelValues(metrics.ResultOK).Inc()

	r := newReceipt()
	r.Key = &key
	r.TokenID = &tokenID
	r.Events = append(r.Events,
		solutionAdded(sol.Index, to),
		transfer(common.Address{}, to, tokenID),
	)
	log.Infow("token minted", "key", key.Hex(), "tokenId", tokenID.String(), "to", to.Hex(), "tx", r.TxID.String())
	return r, nil
}

// Mint issues tokenID without a proof. Only the contract owner may call it.
func (l *Ledger) Mint(caller, to common.Address, tokenID types.Word) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wTx := l.db.WriteTx()
	defer wTx.Discard()
	if err := l.tokens.Mint(wTx, caller, to, tokenID); err != nil {
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mint: %w", err)
	}
	r := newReceipt()
	r.TokenID = &tokenID
	r.Events = append(r.Events, transfer(common.Address{}, to, tokenID))
	log.Infow("token minted without proof", "tokenId", tokenID.String(), "to", to.Hex(), "tx", r.TxID.String())
	return r, nil
}

func (l *Ledger) TransferFrom(caller, from, to common.Address, tokenID types.Word) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wTx := l.db.WriteTx()
	defer wTx.Discard()
	if err := l.tokens.TransferFrom(wTx, caller, from, to, tokenID); err != nil {
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	metrics.Transfers.Inc()
	r := newReceipt()
	r.TokenID = &tokenID
	r.Events = append(r.Events, transfer(from, to, tokenID))
	log.Debugw("token transferred", "tokenId", tokenID.String(), "from", from.Hex(), "to", to.Hex())
	return r, nil
}

func (l *Ledger) Approve(caller, approved common.Address, tokenID types.Word) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wTx := l.db.WriteTx()
	defer wTx.Discard()
	if err := l.tokens.Approve(wTx, caller, approved, tokenID); err != nil {
		return nil, err
	}
	if err := wTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	r := newReceipt()
	r.TokenID = &tokenID
	r.Events = append(r.Events, approval(caller, approved, tokenID))
	return r, nil
}

func (l *Ledger) OwnerOf(tokenID types.Word) (common.Address, error) {
	return l.tokens.OwnerOf(l.db, tokenID)
}

func (l *Ledger) GetApproved(tokenID types.Word) (common.Address, error) {
	return l.tokens.GetApproved(l.db, tokenID)
}

func (l *Ledger) BalanceOf(owner common.Address) (uint64, error) {
	return l.tokens.BalanceOf(l.db, owner)
}

func (l *Ledger) TotalSupply() (uint64, error) {
	return l.tokens.TotalSupply(l.db)
}

func (l *Ledger) TokensOf(owner common.Address) ([]types.Word, error) {
	return l.tokens.TokensOf(l.db, owner)
}

func (l *Ledger) TokenURI(tokenID types.Word) (string, error) {
	return l.tokens.TokenURI(l.db, tokenID)
}

func (l *Ledger) Name() string          { return l.tokens.Name() }
func (l *Ledger) Symbol() string        { return l.tokens.Symbol() }
func (l *Ledger) Owner() common.Address { return l.tokens.Owner() }

// verify checks the encoding first so malformed proofs never reach the
// pairing code.
func (l *Ledger) verify(proof types.Proof, inputs []types.Word) error {
	if err := proof.Validate(); err != nil {
		return fmt.Errorf("%w: %w", verifier.ErrInvalidProof, err)
	}
	if err := types.ValidateInputs(inputs); err != nil {
		return fmt.Errorf("%w: %w", verifier.ErrInvalidProof, err)
	}
	if err := l.verifier.Verify(proof, inputs); err != nil {
		if errors.Is(err, verifier.ErrInvalidProof) {
			return err
		}
		return fmt.Errorf("%w: %w", verifier.ErrInvalidProof, err)
	}
	return nil
}
