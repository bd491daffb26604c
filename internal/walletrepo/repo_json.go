// Package walletrepo manages repository layer of wallet balances and transactions.
package walletrepo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
)

// document is the durable form of the whole store: loaded in full at startup
// and rewritten in full on every mutation.
type document struct {
	Accounts     map[string]domain.Balances `json:"accounts"`
	Transactions []domain.Transaction       `json:"transactions"`
	Idempotency  map[string]string          `json:"idempotency,omitempty"` // idempotency key -> transaction id
}

// RepoJSON facilitates wallet repository layer logic backed by a single JSON
// document.
//
// One mutex guards both the in-memory document and the flush. Every mutation
// rewrites the whole file, so finer-grained locks would still contend on the
// flush; in-memory state is committed only after a successful flush.
type RepoJSON struct {
	path string

	mu  sync.Mutex
	doc document
}

// NewRepoJSON loads the store from the given path. A missing file yields an
// empty store.
func NewRepoJSON(path string) (*RepoJSON, error) {
	r := &RepoJSON{
		path: path,
		doc: document{
			Accounts: map[string]domain.Balances{},
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}

		return nil, err
	}

	if err := json.Unmarshal(data, &r.doc); err != nil {
		return nil, err
	}

	if r.doc.Accounts == nil {
		r.doc.Accounts = map[string]domain.Balances{}
	}

	return r, nil
}

// zeroBalances returns a zero-initialized mapping over the supported
// currency set.
func zeroBalances() domain.Balances {
	b := make(domain.Balances, len(currencypkg.SupportedCurrencies))
	for _, currency := range currencypkg.SupportedCurrencies {
		b[currency] = decimal.Zero
	}

	return b
}

// flushLocked writes the document to a temporary file and renames it over the
// store path. The caller must hold the mutex.
func (r *RepoJSON) flushLocked() error {
	data, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".ledger-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}

// Balances returns the account's balances, durably creating a zero-initialized
// mapping on first reference.
func (r *RepoJSON) Balances(ctx context.Context, key string) (domain.Balances, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if balances, ok := r.doc.Accounts[key]; ok {
		return balances.Copy(), nil
	}

	created := zeroBalances()
	r.doc.Accounts[key] = created

	if err := r.flushLocked(); err != nil {
		l.Error().Err(err).Str("account", key).Msg("flush failed")
		delete(r.doc.Accounts, key)

		return nil, domain.ErrPersistenceFailure
	}

	return created.Copy(), nil
}

// AllBalances returns a copy of every account's balances.
func (r *RepoJSON) AllBalances(ctx context.Context) (map[string]domain.Balances, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make(map[string]domain.Balances, len(r.doc.Accounts))
	for key, balances := range r.doc.Accounts {
		all[key] = balances.Copy()
	}

	return all, nil
}

// SetBalances replaces the account's full balance mapping.
func (r *RepoJSON) SetBalances(ctx context.Context, key string, balances domain.Balances) error {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed := r.doc.Accounts[key]
	r.doc.Accounts[key] = balances.Copy()

	if err := r.flushLocked(); err != nil {
		l.Error().Err(err).Str("account", key).Msg("flush failed")

		if existed {
			r.doc.Accounts[key] = previous
		} else {
			delete(r.doc.Accounts, key)
		}

		return domain.ErrPersistenceFailure
	}

	return nil
}

// Transactions returns transactions where the account is sender or recipient,
// newest first. A non-positive limit returns all matches.
func (r *RepoJSON) Transactions(ctx context.Context, key string, limit int) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []domain.Transaction{}

	for i := len(r.doc.Transactions) - 1; i >= 0; i-- {
		t := r.doc.Transactions[i]
		if t.Sender != key && t.Recipient != key {
			continue
		}

		items = append(items, t)

		if limit > 0 && len(items) == limit {
			break
		}
	}

	return items, nil
}

// Transfer applies a transfer atomically: the funds check, both balance
// mutations, the transaction append, and the flush all happen under the
// store lock. No partial outcome is ever observable.
func (r *RepoJSON) Transfer(ctx context.Context, arg domain.ApplyTransferParams) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if arg.IdempotencyKey != "" {
		result, ok, err := r.replayLocked(arg)
		if err != nil {
			return domain.TransferTxResult{}, err
		}

		if ok {
			l.Info().Str("idempotency_key", arg.IdempotencyKey).Msg("transfer replayed")
			return result, nil
		}
	}

	newSender := zeroBalances()
	if balances, ok := r.doc.Accounts[arg.Sender]; ok {
		newSender = balances.Copy()
	}

	senderBalance := newSender[arg.SenderCurrency]
	if senderBalance.LessThan(arg.WalletAmount) {
		return domain.TransferTxResult{}, domain.ErrInsufficientBalance
	}

	debited := senderBalance.Sub(arg.SenderDebit)
	if debited.IsNegative() {
		// The wallet fee would overdraw the account.
		return domain.TransferTxResult{}, domain.ErrInsufficientBalance
	}

	newSender[arg.SenderCurrency] = debited

	newRecipient := newSender
	if arg.Recipient != arg.Sender {
		newRecipient = zeroBalances()
		if balances, ok := r.doc.Accounts[arg.Recipient]; ok {
			newRecipient = balances.Copy()
		}
	}

	newRecipient[arg.RecipientCurrency] = newRecipient[arg.RecipientCurrency].Add(arg.RecipientCredit)

	transaction := domain.Transaction{
		ID:                uuid.NewString(),
		Sender:            arg.Sender,
		Recipient:         arg.Recipient,
		Total:             arg.Total,
		SenderCurrency:    arg.SenderCurrency,
		RecipientCurrency: arg.RecipientCurrency,
		Description:       arg.Description,
		CreatedAt:         time.Now().UTC(),
	}

	rollback := r.stageLocked(arg, newSender, newRecipient, transaction)

	if err := r.flushLocked(); err != nil {
		l.Error().Err(err).Msg("flush failed")
		rollback()

		return domain.TransferTxResult{}, domain.ErrPersistenceFailure
	}

	return domain.TransferTxResult{
		Transaction:      transaction,
		SenderBalance:    newSender.Copy(),
		RecipientBalance: newRecipient.Copy(),
	}, nil
}

// stageLocked installs the transfer outcome into the document and returns a
// function restoring the previous state, for use when the flush fails.
func (r *RepoJSON) stageLocked(arg domain.ApplyTransferParams, newSender, newRecipient domain.Balances, transaction domain.Transaction) func() {
	prevSender, hadSender := r.doc.Accounts[arg.Sender]
	prevRecipient, hadRecipient := r.doc.Accounts[arg.Recipient]

	r.doc.Accounts[arg.Sender] = newSender
	r.doc.Accounts[arg.Recipient] = newRecipient
	r.doc.Transactions = append(r.doc.Transactions, transaction)

	if arg.IdempotencyKey != "" {
		if r.doc.Idempotency == nil {
			r.doc.Idempotency = map[string]string{}
		}

		r.doc.Idempotency[arg.IdempotencyKey] = transaction.ID
	}

	return func() {
		if hadSender {
			r.doc.Accounts[arg.Sender] = prevSender
		} else {
			delete(r.doc.Accounts, arg.Sender)
		}

		if hadRecipient {
			r.doc.Accounts[arg.Recipient] = prevRecipient
		} else {
			delete(r.doc.Accounts, arg.Recipient)
		}

		r.doc.Transactions = r.doc.Transactions[:len(r.doc.Transactions)-1]

		if arg.IdempotencyKey != "" {
			delete(r.doc.Idempotency, arg.IdempotencyKey)
		}
	}
}

// replayLocked returns the previously recorded outcome of a duplicate
// submission, with the parties' current balances and no mutation. A key
// reused with different transfer parameters is a conflict, not a replay.
func (r *RepoJSON) replayLocked(arg domain.ApplyTransferParams) (domain.TransferTxResult, bool, error) {
	id, ok := r.doc.Idempotency[arg.IdempotencyKey]
	if !ok {
		return domain.TransferTxResult{}, false, nil
	}

	for _, t := range r.doc.Transactions {
		if t.ID != id {
			continue
		}

		if t.Sender != arg.Sender || t.Recipient != arg.Recipient ||
			t.SenderCurrency != arg.SenderCurrency ||
			t.RecipientCurrency != arg.RecipientCurrency ||
			!t.Total.Equal(arg.Total) {
			return domain.TransferTxResult{}, false, domain.ErrIdempotencyConflict
		}

		return domain.TransferTxResult{
			Transaction:      t,
			SenderBalance:    r.doc.Accounts[t.Sender].Copy(),
			RecipientBalance: r.doc.Accounts[t.Recipient].Copy(),
		}, true, nil
	}

	return domain.TransferTxResult{}, false, nil
}
