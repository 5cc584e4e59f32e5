package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"simple-bank-api/internal/database"
	"simple-bank-api/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// AccountRepositorySuite runs the store contract against one implementation
type AccountRepositorySuite struct {
	suite.Suite
	newRepo func(s *AccountRepositorySuite) AccountRepositoryInterface
	cleanup func()
	repo    AccountRepositoryInterface
	ctx     context.Context
}

// SetupTest runs before each test in the suite
func (s *AccountRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.cleanup = nil
	s.repo = s.newRepo(s)
}

// TearDownTest runs after each test in the suite
func (s *AccountRepositorySuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestGormAccountRepositorySuite(t *testing.T) {
	suite.Run(t, &AccountRepositorySuite{
		newRepo: func(s *AccountRepositorySuite) AccountRepositoryInterface {
			db := database.SetupTestDB(s.T())
			s.cleanup = func() { database.CleanupTestDB(s.T(), db) }
			return NewAccountRepository(db.DB)
		},
	})
}

func TestMemoryAccountRepositorySuite(t *testing.T) {
	suite.Run(t, &AccountRepositorySuite{
		newRepo: func(s *AccountRepositorySuite) AccountRepositoryInterface {
			return NewMemoryAccountRepository()
		},
	})
}

func (s *AccountRepositorySuite) addAccount(name string, balance int64) *models.Account {
	account := models.NewAccount(name)
	account.Balance = decimal.NewFromInt(balance)
	s.Require().NoError(s.repo.Add(s.ctx, account))
	return account
}

func (s *AccountRepositorySuite) balanceOf(id uuid.UUID) decimal.Decimal {
	account, err := s.repo.Get(s.ctx, id)
	s.Require().NoError(err)
	return account.Balance
}

func (s *AccountRepositorySuite) TestAddAndGet() {
	account := s.addAccount(gofakeit.FirstName()+" "+gofakeit.LastName(), 0)

	found, err := s.repo.Get(s.ctx, account.ID)
	s.NoError(err)
	s.Equal(account.ID, found.ID)
	s.Equal(account.Name, found.Name)
	s.True(found.Balance.IsZero())

	_, err = s.repo.Get(s.ctx, uuid.New())
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestAdd_Duplicate() {
	account := s.addAccount("Greg Jones", 0)

	duplicate := models.NewAccount("Tom Hanks")
	duplicate.ID = account.ID

	s.ErrorIs(s.repo.Add(s.ctx, duplicate), ErrAccountExists)
}

func (s *AccountRepositorySuite) TestGet_ReturnsDetachedCopy() {
	account := s.addAccount("Greg Jones", 222)

	found, err := s.repo.Get(s.ctx, account.ID)
	s.Require().NoError(err)
	found.Balance = decimal.Zero

	s.Equal("222", s.balanceOf(account.ID).String())
}

func (s *AccountRepositorySuite) TestGetAll() {
	s.addAccount("Greg Jones", 222)
	s.addAccount("Tom Hanks", 5000)
	s.addAccount("Betty Crocker", 1000000)

	q := models.NewAccountQuery()
	q.SortBy = models.SortByBalance
	q.SortOrder = models.SortOrderDesc
	q.PageSize = 2

	page, meta, err := s.repo.GetAll(s.ctx, q)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Betty Crocker", page[0].Name)
	s.Equal("Tom Hanks", page[1].Name)
	s.Equal(3, meta.TotalCount)

	q.FilterTerm = "nobody"
	_, _, err = s.repo.GetAll(s.ctx, q)
	s.ErrorIs(err, ErrNoResults)
}

func (s *AccountRepositorySuite) TestGetAll_Empty() {
	_, _, err := s.repo.GetAll(s.ctx, models.NewAccountQuery())
	s.ErrorIs(err, ErrNoResults)
}

func (s *AccountRepositorySuite) TestUpdate() {
	account := s.addAccount("Greg Jones", 222)

	updated, err := s.repo.Update(s.ctx, account.ID, decimal.RequireFromString("10.50"))
	s.Require().NoError(err)
	s.Equal("232.5", updated.Balance.String())

	updated, err = s.repo.Update(s.ctx, account.ID, decimal.RequireFromString("-232.5"))
	s.Require().NoError(err)
	s.True(updated.Balance.IsZero())
	s.True(s.balanceOf(account.ID).IsZero())
}

func (s *AccountRepositorySuite) TestUpdate_InsufficientFunds() {
	account := s.addAccount("Greg Jones", 222)

	_, err := s.repo.Update(s.ctx, account.ID, decimal.NewFromInt(-223))
	s.ErrorIs(err, ErrInsufficientFunds)
	s.Equal("222", s.balanceOf(account.ID).String())
}

func (s *AccountRepositorySuite) TestUpdate_NotFound() {
	_, err := s.repo.Update(s.ctx, uuid.New(), decimal.NewFromInt(1))
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountRepositorySuite) TestTransfer() {
	sender := s.addAccount("Tom Hanks", 5000)
	recipient := s.addAccount("Greg Jones", 222)

	from, to, err := s.repo.Transfer(s.ctx, sender.ID, recipient.ID, decimal.NewFromInt(1000))
	s.Require().NoError(err)
	s.Equal("4000", from.Balance.String())
	s.Equal("1222", to.Balance.String())
	s.Equal("4000", s.balanceOf(sender.ID).String())
	s.Equal("1222", s.balanceOf(recipient.ID).String())
}

func (s *AccountRepositorySuite) TestTransfer_InsufficientFundsChangesNothing() {
	sender := s.addAccount("Greg Jones", 222)
	recipient := s.addAccount("Tom Hanks", 5000)

	_, _, err := s.repo.Transfer(s.ctx, sender.ID, recipient.ID, decimal.NewFromInt(223))
	s.ErrorIs(err, ErrInsufficientFunds)
	s.Equal("222", s.balanceOf(sender.ID).String())
	s.Equal("5000", s.balanceOf(recipient.ID).String())
}

func (s *AccountRepositorySuite) TestTransfer_MissingAccount() {
	sender := s.addAccount("Greg Jones", 222)

	_, _, err := s.repo.Transfer(s.ctx, sender.ID, uuid.New(), decimal.NewFromInt(1))
	s.ErrorIs(err, ErrAccountNotFound)
	s.Equal("222", s.balanceOf(sender.ID).String())
}

func (s *AccountRepositorySuite) TestTransfer_SameAccount() {
	account := s.addAccount("Greg Jones", 222)

	from, to, err := s.repo.Transfer(s.ctx, account.ID, account.ID, decimal.NewFromInt(100))
	s.Require().NoError(err)
	s.Equal("222", from.Balance.String())
	s.Equal("222", to.Balance.String())

	_, _, err = s.repo.Transfer(s.ctx, account.ID, account.ID, decimal.NewFromInt(300))
	s.ErrorIs(err, ErrInsufficientFunds)
}

func (s *AccountRepositorySuite) TestConcurrentWithdrawalsNeverOverdraw() {
	account := s.addAccount("Betty Crocker", 100)

	const workers = 30
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		rejected   int
		unexpected []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.Update(s.ctx, account.ID, decimal.NewFromInt(-5))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientFunds):
				rejected++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	s.Empty(unexpected)
	s.Equal(20, succeeded)
	s.Equal(10, rejected)
	s.True(s.balanceOf(account.ID).IsZero())
}

func (s *AccountRepositorySuite) TestConcurrentOppositeTransfers() {
	a := s.addAccount("Greg Jones", 1000)
	b := s.addAccount("Tom Hanks", 1000)

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := s.repo.Transfer(s.ctx, a.ID, b.ID, decimal.NewFromInt(10))
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, _, err := s.repo.Transfer(s.ctx, b.ID, a.ID, decimal.NewFromInt(10))
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal("1000", s.balanceOf(a.ID).String())
	s.Equal("1000", s.balanceOf(b.ID).String())
}
