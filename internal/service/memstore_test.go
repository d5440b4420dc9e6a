package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pnyx/internal/domain"
	"pnyx/internal/repository"
	"pnyx/internal/util"
	"pnyx/pkg/db"
)

// memState is the whole database of a memStore.
type memState struct {
	nextID       int64
	users        map[int64]domain.User
	wallets      map[int64]domain.Wallet
	txTypes      map[domain.TransactionTypeName]domain.TransactionType
	transactions []domain.WalletTransaction
	issues       map[int64]domain.Issue
	proposals    map[int64]domain.Proposal
	stakes       map[int64]domain.StakedProposal
	votes        []domain.Vote
}

func newMemState() *memState {
	return &memState{
		users:     map[int64]domain.User{},
		wallets:   map[int64]domain.Wallet{},
		txTypes:   map[domain.TransactionTypeName]domain.TransactionType{},
		issues:    map[int64]domain.Issue{},
		proposals: map[int64]domain.Proposal{},
		stakes:    map[int64]domain.StakedProposal{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	c.nextID = s.nextID
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.txTypes {
		c.txTypes[k] = v
	}
	c.transactions = append(c.transactions, s.transactions...)
	for k, v := range s.issues {
		c.issues[k] = v
	}
	for k, v := range s.proposals {
		c.proposals[k] = v
	}
	for k, v := range s.stakes {
		c.stakes[k] = v
	}
	c.votes = append(c.votes, s.votes...)
	return c
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// memStore keeps the repositories' data in memory. Units of work run one at
// a time and a rollback restores the snapshot taken at begin, the way a
// serializable database would behave for a single writer.
type memStore struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

// memTx is both the TxController and the DBExecutor of a unit of work. The
// fake repositories never issue SQL, so the executor methods are unused.
type memTx struct {
	store    *memStore
	snapshot *memState
	done     bool
}

func (s *memStore) begin(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	s.txMu.Lock()
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()
	return &memTx{store: s, snapshot: snapshot}, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.state = t.snapshot
	t.store.mu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

var errNoSQL = errors.New("memstore: SQL is not supported")

func (t *memTx) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (t *memTx) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (t *memTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (t *memTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (s *memStore) unitOfWork() *UnitOfWork {
	return NewUnitOfWork(nil, s.begin, db.CommitTx, db.RollbackTx)
}

// executor is the non-transactional DBExecutor handed to services.
func (s *memStore) executor() repository.DBExecutor {
	return &memTx{store: s, done: true}
}

func (s *memStore) with(fn func(st *memState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// balanceOf returns the stored wallet balance of userID.
func (s *memStore) balanceOf(userID int64) decimal.Decimal {
	var balance decimal.Decimal
	s.with(func(st *memState) {
		for _, w := range st.wallets {
			if w.UserID == userID {
				balance = w.TotalBalance
			}
		}
	})
	return balance
}

// ledgerSumOf sums the transactions of userID's wallet.
func (s *memStore) ledgerSumOf(userID int64) decimal.Decimal {
	sum := decimal.Zero
	s.with(func(st *memState) {
		var walletID int64
		for _, w := range st.wallets {
			if w.UserID == userID {
				walletID = w.ID
			}
		}
		for _, tx := range st.transactions {
			if tx.WalletID == walletID {
				sum = sum.Add(tx.Balance)
			}
		}
	})
	return sum
}

func (s *memStore) stakesOf(userID int64) []domain.StakedProposal {
	var stakes []domain.StakedProposal
	s.with(func(st *memState) {
		for _, stake := range st.stakes {
			if stake.UserID == userID {
				stakes = append(stakes, stake)
			}
		}
	})
	sort.Slice(stakes, func(i, j int) bool { return stakes[i].ID < stakes[j].ID })
	return stakes
}

func (s *memStore) transactionsOf(userID int64, name domain.TransactionTypeName) []domain.WalletTransaction {
	var txs []domain.WalletTransaction
	s.with(func(st *memState) {
		for _, w := range st.wallets {
			if w.UserID != userID {
				continue
			}
			for _, tx := range st.transactions {
				if tx.WalletID == w.ID && tx.TransactionType == name {
					txs = append(txs, tx)
				}
			}
		}
	})
	return txs
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) CreateUser(_ context.Context, _ repository.DBExecutor, user *domain.User) error {
	var err error
	r.s.with(func(st *memState) {
		for _, u := range st.users {
			if u.Username == user.Username {
				err = util.ErrDuplicateEntry
				return
			}
		}
		user.ID = st.id()
		st.users[user.ID] = *user
	})
	return err
}

func (r memUserRepo) GetUserByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.s.with(func(st *memState) { user, ok = st.users[id] })
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return &user, nil
}

func (r memUserRepo) GetUserByUsername(_ context.Context, _ repository.DBExecutor, username string) (*domain.User, error) {
	var found *domain.User
	r.s.with(func(st *memState) {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				found = &u
			}
		}
	})
	if found == nil {
		return nil, util.ErrUserNotFound
	}
	return found, nil
}

type memWalletRepo struct{ s *memStore }

func (r memWalletRepo) CreateWallet(_ context.Context, _ repository.DBExecutor, wallet *domain.Wallet) error {
	r.s.with(func(st *memState) {
		wallet.ID = st.id()
		st.wallets[wallet.ID] = *wallet
	})
	return nil
}

func (r memWalletRepo) GetWalletByUserID(_ context.Context, _ repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var found *domain.Wallet
	r.s.with(func(st *memState) {
		for _, w := range st.wallets {
			if w.UserID == userID {
				w := w
				found = &w
			}
		}
	})
	if found == nil {
		return nil, util.ErrWalletNotFound
	}
	return found, nil
}

func (r memWalletRepo) LockWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	return r.GetWalletByUserID(ctx, q, userID)
}

func (r memWalletRepo) AddToBalance(_ context.Context, _ repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	var err error
	r.s.with(func(st *memState) {
		w, ok := st.wallets[walletID]
		if !ok {
			err = util.ErrWalletNotFound
			return
		}
		w.TotalBalance = w.TotalBalance.Add(delta)
		st.wallets[walletID] = w
	})
	return err
}

type memTransactionRepo struct{ s *memStore }

func (r memTransactionRepo) CreateTransaction(_ context.Context, _ repository.DBExecutor, transaction *domain.WalletTransaction) error {
	r.s.with(func(st *memState) {
		transaction.ID = st.id()
		st.transactions = append(st.transactions, *transaction)
	})
	return nil
}

func (r memTransactionRepo) GetTransactionsByWalletID(_ context.Context, _ repository.DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	var all []domain.WalletTransaction
	r.s.with(func(st *memState) {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			if st.transactions[i].WalletID == walletID {
				all = append(all, st.transactions[i])
			}
		}
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.WalletTransaction{}, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (r memTransactionRepo) GetTransactionTypeByName(_ context.Context, _ repository.DBExecutor, name domain.TransactionTypeName) (*domain.TransactionType, error) {
	var (
		txType domain.TransactionType
		ok     bool
	)
	r.s.with(func(st *memState) { txType, ok = st.txTypes[name] })
	if !ok {
		return nil, util.ErrTransactionTypeNotFound
	}
	return &txType, nil
}

func (r memTransactionRepo) EnsureTransactionType(_ context.Context, _ repository.DBExecutor, name domain.TransactionTypeName, fee decimal.Decimal) error {
	r.s.with(func(st *memState) {
		if _, ok := st.txTypes[name]; !ok {
			st.txTypes[name] = domain.TransactionType{ID: st.id(), Name: name, Fee: fee}
		}
	})
	return nil
}

type memIssueRepo struct{ s *memStore }

func (r memIssueRepo) CreateIssue(_ context.Context, _ repository.DBExecutor, issue *domain.Issue) error {
	r.s.with(func(st *memState) {
		issue.ID = st.id()
		st.issues[issue.ID] = *issue
	})
	return nil
}

func (r memIssueRepo) GetIssueByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Issue, error) {
	var (
		issue domain.Issue
		ok    bool
	)
	r.s.with(func(st *memState) { issue, ok = st.issues[id] })
	if !ok {
		return nil, util.ErrIssueNotFound
	}
	return &issue, nil
}

func (r memIssueRepo) ListIssueViews(_ context.Context, _ repository.DBExecutor, now time.Time) ([]domain.IssueView, error) {
	views := []domain.IssueView{}
	r.s.with(func(st *memState) {
		for _, issue := range st.issues {
			view := domain.IssueView{Issue: issue}
			for _, stake := range st.stakes {
				if stake.IssueID == issue.ID && !stake.IsExpired(now) {
					view.TotalStakeCount++
				}
			}
			for _, vote := range st.votes {
				if st.proposals[vote.ProposalID].IssueID == issue.ID {
					view.TotalVoteCount++
				}
			}
			views = append(views, view)
		}
	})
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

type memProposalRepo struct{ s *memStore }

func (r memProposalRepo) CreateProposal(_ context.Context, _ repository.DBExecutor, proposal *domain.Proposal) error {
	r.s.with(func(st *memState) {
		proposal.ID = st.id()
		st.proposals[proposal.ID] = *proposal
	})
	return nil
}

func (r memProposalRepo) GetProposalByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Proposal, error) {
	var (
		proposal domain.Proposal
		ok       bool
	)
	r.s.with(func(st *memState) { proposal, ok = st.proposals[id] })
	if !ok {
		return nil, util.ErrProposalNotFound
	}
	return &proposal, nil
}

func (r memProposalRepo) ListProposalViews(_ context.Context, _ repository.DBExecutor, issueID int64, now time.Time) ([]domain.ProposalView, error) {
	views := []domain.ProposalView{}
	r.s.with(func(st *memState) {
		for _, proposal := range st.proposals {
			if proposal.IssueID != issueID {
				continue
			}
			view := domain.ProposalView{Proposal: proposal}
			for _, stake := range st.stakes {
				if stake.ProposalID == proposal.ID && !stake.IsExpired(now) {
					view.StakeCount++
				}
			}
			for _, vote := range st.votes {
				if vote.ProposalID == proposal.ID {
					view.VoteCount++
				}
			}
			views = append(views, view)
		}
	})
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

type memVoteRepo struct{ s *memStore }

func (r memVoteRepo) CreateVote(_ context.Context, _ repository.DBExecutor, vote *domain.Vote) error {
	var err error
	r.s.with(func(st *memState) {
		for _, v := range st.votes {
			if v.ProposalID == vote.ProposalID && v.UserID == vote.UserID {
				err = util.ErrDuplicateEntry
				return
			}
		}
		vote.ID = st.id()
		st.votes = append(st.votes, *vote)
	})
	return err
}

type memStakeRepo struct{ s *memStore }

func (r memStakeRepo) CreateStake(_ context.Context, _ repository.DBExecutor, stake *domain.StakedProposal) error {
	var err error
	r.s.with(func(st *memState) {
		for _, existing := range st.stakes {
			if existing.UserID == stake.UserID && existing.IssueID == stake.IssueID {
				err = util.ErrAlreadyStaked
				return
			}
		}
		stake.ID = st.id()
		st.stakes[stake.ID] = *stake
	})
	return err
}

func (r memStakeRepo) GetStakesByUserID(_ context.Context, _ repository.DBExecutor, userID int64) ([]domain.StakedProposal, error) {
	return r.s.stakesOf(userID), nil
}

func (r memStakeRepo) GetExpiredStakes(_ context.Context, _ repository.DBExecutor, now time.Time) ([]domain.StakedProposal, error) {
	var expired []domain.StakedProposal
	r.s.with(func(st *memState) {
		for _, stake := range st.stakes {
			if stake.IsExpired(now) {
				expired = append(expired, stake)
			}
		}
	})
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

func (r memStakeRepo) DeleteStake(_ context.Context, _ repository.DBExecutor, id int64) (bool, error) {
	var deleted bool
	r.s.with(func(st *memState) {
		if _, ok := st.stakes[id]; ok {
			delete(st.stakes, id)
			deleted = true
		}
	})
	return deleted, nil
}
