package walletservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/internal/ratefee"
	"github.com/go-petr/wallet-ledger/pkg/currencypkg"
	"github.com/go-petr/wallet-ledger/pkg/randompkg"
)

func testPolicy() *ratefee.Policy {
	return ratefee.New(
		decimal.RequireFromString(ratefee.DefaultWalletFeeRate),
		decimal.RequireFromString(ratefee.DefaultConversionFeeRate),
		ratefee.NewFixedRates(decimal.RequireFromString(ratefee.DefaultExchangeRate)),
		map[string]string{"pierre@gmail.com": currencypkg.EUR},
	)
}

func TestTransfer(t *testing.T) {
	testCases := []struct {
		name          string
		arg           domain.CreateTransferParams
		buildStubs    func(t *testing.T, repo *MockRepo)
		checkResponse func(t *testing.T, res domain.TransferTxResult, err error)
	}{
		{
			name: "Invalid amount",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "!@#$",
				Currency:     "USD",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "Negative amount",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "-100",
				Currency:     "USD",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNegativeAmount)
			},
		},
		{
			name: "Negative bank amount",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "100",
				Currency:     "USD",
				BankAmount:   "-50",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNegativeAmount)
			},
		},
		{
			name: "Unsupported currency",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "100",
				Currency:     "GBP",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrCurrencyNotSupported)
			},
		},
		{
			name: "Same currency with bank amount",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "100",
				Currency:     "usd",
				BankAmount:   "50",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.ApplyTransferParams) (domain.TransferTxResult, error) {
						require.Equal(t, currencypkg.USD, arg.SenderCurrency)
						require.Equal(t, currencypkg.USD, arg.RecipientCurrency)
						require.True(t, arg.WalletAmount.Equal(decimal.RequireFromString("100")))
						require.True(t, arg.SenderDebit.Equal(decimal.RequireFromString("100.5")))
						require.True(t, arg.RecipientCredit.Equal(decimal.RequireFromString("150")))
						require.True(t, arg.Total.Equal(decimal.RequireFromString("150")))
						require.Equal(t, "Transfer from alice@email.com to bob@email.com", arg.Description)

						return domain.TransferTxResult{}, nil
					})
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "Settlement preference triggers conversion",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "pierre@gmail.com",
				WalletAmount: "100",
				Currency:     "USD",
				BankAmount:   "50",
				Description:  "lunch",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.ApplyTransferParams) (domain.TransferTxResult, error) {
						require.Equal(t, currencypkg.EUR, arg.RecipientCurrency)
						// 100 * 0.98 * 0.9 + 50 * 0.98 * 0.9 = 88.2 + 44.1
						require.True(t, arg.RecipientCredit.Equal(decimal.RequireFromString("132.3")))
						require.True(t, arg.SenderDebit.Equal(decimal.RequireFromString("100.5")))
						require.True(t, arg.Total.Equal(decimal.RequireFromString("150")))
						require.Equal(t, "lunch", arg.Description)

						return domain.TransferTxResult{}, nil
					})
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "Insufficient balance from repo",
			arg: domain.CreateTransferParams{
				Sender:       "alice@email.com",
				Recipient:    "bob@email.com",
				WalletAmount: "100",
				Currency:     "USD",
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(t, repo)

			service := New(repo, testPolicy())

			res, err := service.Transfer(context.Background(), tc.arg)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestSetBalances(t *testing.T) {
	testCases := []struct {
		name       string
		balances   domain.Balances
		buildStubs func(t *testing.T, repo *MockRepo)
		wantErr    error
	}{
		{
			name: "Normalizes and zero-fills",
			balances: domain.Balances{
				"usd": decimal.RequireFromString("1000"),
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().SetBalances(gomock.Any(), "alice@email.com", gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, _ string, balances domain.Balances) error {
						require.Len(t, balances, 2)
						require.True(t, balances[currencypkg.USD].Equal(decimal.RequireFromString("1000")))
						require.True(t, balances[currencypkg.EUR].IsZero())

						return nil
					})
			},
		},
		{
			name: "Unsupported currency",
			balances: domain.Balances{
				"GBP": decimal.RequireFromString("10"),
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().SetBalances(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrCurrencyNotSupported,
		},
		{
			name: "Negative amount",
			balances: domain.Balances{
				"USD": decimal.RequireFromString("-10"),
			},
			buildStubs: func(t *testing.T, repo *MockRepo) {
				repo.EXPECT().SetBalances(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrNegativeAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(t, repo)

			service := New(repo, testPolicy())

			err := service.SetBalances(context.Background(), "alice@email.com", tc.balances)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestReadAccessors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo, testPolicy())

	ctx := context.Background()
	key := randompkg.AccountKey()

	want := domain.Balances{currencypkg.USD: decimal.RequireFromString(randompkg.MoneyAmountBetween(1, 1000))}

	repo.EXPECT().Balances(gomock.Any(), gomock.Eq(key)).Times(1).Return(want, nil)

	got, err := service.Balances(ctx, key)
	require.NoError(t, err)
	require.Equal(t, want, got)

	repo.EXPECT().AllBalances(gomock.Any()).Times(1).Return(map[string]domain.Balances{key: want}, nil)

	all, err := service.AllBalances(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	repo.EXPECT().Transactions(gomock.Any(), gomock.Eq(key), gomock.Eq(10)).
		Times(1).
		Return([]domain.Transaction{}, nil)

	transactions, err := service.Transactions(ctx, key, 10)
	require.NoError(t, err)
	require.Empty(t, transactions)
}
