package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"sheet_ledger_bot/internal/ledger"
	"sheet_ledger_bot/internal/sheets"
	"sheet_ledger_bot/internal/transfer"

	"github.com/shopspring/decimal"
)

type fakeLedger struct {
	accounts []ledger.AccountRecord
	prices   []ledger.PriceRecord
	ops      []ledger.OpRecord
	err      error
	noPrices bool
	lastN    int
}

func (f *fakeLedger) Account(_ context.Context, username string) (ledger.AccountRecord, error) {
	if f.err != nil {
		return ledger.AccountRecord{}, f.err
	}
	if acc, ok := ledger.FindAccount(f.accounts, username); ok {
		return acc, nil
	}
	return ledger.AccountRecord{}, ledger.ErrAccountNotFound
}

func (f *fakeLedger) AccountByName(_ context.Context, name string) (ledger.AccountRecord, error) {
	if f.err != nil {
		return ledger.AccountRecord{}, f.err
	}
	if acc, ok := ledger.FindAccountByName(f.accounts, name); ok {
		return acc, nil
	}
	return ledger.AccountRecord{}, ledger.ErrAccountNotFound
}

func (f *fakeLedger) Price(_ context.Context, query string) (ledger.PriceMatch, error) {
	if f.noPrices {
		return ledger.PriceMatch{}, ledger.ErrTableNotConfigured
	}
	if f.err != nil {
		return ledger.PriceMatch{}, f.err
	}
	return ledger.LookupPrice(f.prices, query, ledger.DefaultAliases()), nil
}

func (f *fakeLedger) RecentOps(_ context.Context, username string, n int) ([]ledger.OpRecord, error) {
	f.lastN = n
	if f.err != nil {
		return nil, f.err
	}
	return ledger.RecentOps(f.ops, username, n), nil
}

type fakePayer struct {
	res   *transfer.Result
	err   error
	calls []string
}

func (p *fakePayer) Pay(_ context.Context, sender, recipient, amount string) (*transfer.Result, error) {
	p.calls = append(p.calls, sender+"|"+recipient+"|"+amount)
	return p.res, p.err
}

func testLedger() *fakeLedger {
	return &fakeLedger{
		accounts: []ledger.AccountRecord{
			{Username: "alice", DisplayName: "Алиса", Balance: decimal.RequireFromString("10.00")},
			{Username: "bob", Balance: decimal.RequireFromString("12.5")},
		},
		prices: []ledger.PriceRecord{
			{ItemName: "алмаз", DisplayName: "Алмаз", Price: "100"},
			{ItemName: "алмазный меч", DisplayName: "Алмазный меч", Price: "300"},
			{ItemName: "алмазная кирка", DisplayName: "Алмазная кирка", Price: "250"},
			{ItemName: "жемчуг края", DisplayName: "Жемчуг края", Price: "50"},
		},
		ops: []ledger.OpRecord{
			{Date: "01.03", From: "alice", To: "bob", Amount: decimal.NewFromInt(3), Comment: "долг"},
			{Date: "02.03", From: "bob", To: "alice", Amount: decimal.RequireFromString("1.5")},
		},
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name string
		inv  Invocation
		want string
	}{
		{"own balance", Invocation{Username: "Alice"}, "Баланс Алиса: 10"},
		{"name fallback", Invocation{Username: "bob"}, "Баланс @bob: 12.50"},
		{"no username", Invocation{}, noUsernameText},
		{"unknown user", Invocation{Username: "mallory"}, "Пользователь @mallory не найден в таблице. Обратитесь к администратору."},
		{"by name", Invocation{Args: " алиса "}, "Баланс Алиса: 10"},
		{"unknown name", Invocation{Args: "Ева"}, "Пользователь «Ева» не найден в таблице."},
	}

	s := NewService(testLedger(), &fakePayer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Balance(context.Background(), tt.inv); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBalanceAccessError(t *testing.T) {
	l := testLedger()
	l.err = fmt.Errorf("%w: HTTP 403", sheets.ErrSourceUnavailable)
	got := NewService(l, &fakePayer{}).Balance(context.Background(), Invocation{Username: "alice"})
	if !strings.HasPrefix(got, "Ошибка доступа к таблице: ") || !strings.Contains(got, "403") {
		t.Errorf("Unexpected reply %q", got)
	}
}

func TestPrice(t *testing.T) {
	s := NewService(testLedger(), &fakePayer{})
	ctx := context.Background()

	if got := s.Price(ctx, Invocation{Args: "алмаз"}); got != "Алмаз: 100" {
		t.Errorf("Exact: got %q", got)
	}
	if got := s.Price(ctx, Invocation{Args: "эндер жемчуг"}); got != "Жемчуг края: 50" {
		t.Errorf("Alias: got %q", got)
	}
	want := "Найдено несколько предметов:\n• Алмазный меч: 300\n• Алмазная кирка: 250"
	if got := s.Price(ctx, Invocation{Args: "алмазн"}); got != want {
		t.Errorf("Substring: got %q", got)
	}
	if got := s.Price(ctx, Invocation{Args: "жемчюг края"}); !strings.HasSuffix(got, "Жемчуг края: 50") || !strings.HasPrefix(got, "Точного совпадения нет") {
		t.Errorf("Fuzzy: got %q", got)
	}
	if got := s.Price(ctx, Invocation{Args: "xyz"}); got != "Предмет «xyz» не найден в прайсе." {
		t.Errorf("Not found: got %q", got)
	}
	if got := s.Price(ctx, Invocation{Args: " "}); got != priceUsageText {
		t.Errorf("Usage: got %q", got)
	}

	l := testLedger()
	l.noPrices = true
	if got := NewService(l, &fakePayer{}).Price(ctx, Invocation{Args: "алмаз"}); got != pricesOffText {
		t.Errorf("Unconfigured: got %q", got)
	}
}

func TestPayReplies(t *testing.T) {
	submitted := &transfer.Result{
		Request: transfer.Request{Recipient: "bob", Amount: decimal.RequireFromString("12.5")},
		Before:  decimal.NewFromInt(20),
		After:   decimal.NewFromInt(20),
	}
	confirmed := &transfer.Result{
		Request:   transfer.Request{Recipient: "bob", Amount: decimal.NewFromInt(5)},
		After:     decimal.NewFromInt(15),
		Confirmed: true,
	}

	tests := []struct {
		name string
		res  *transfer.Result
		err  error
		want string
	}{
		{"confirmed", confirmed, nil, "Перевод 5 → @bob выполнен. Ваш баланс: 15"},
		{"submitted", submitted, nil, "Перевод 12.50 → @bob отправлен. Баланс обновится в ближайшее время."},
		{"invalid amount", nil, fmt.Errorf("%w: x", transfer.ErrInvalidAmount), "Некорректная сумма «12,5». Укажите положительное число, например 12,50."},
		{"no username", nil, transfer.ErrSenderUnresolved, noUsernameText},
		{"sender missing", nil, &transfer.AccountError{Role: transfer.RoleSender, Username: "alice", Err: ledger.ErrAccountNotFound}, "Пользователь @alice не найден в таблице. Обратитесь к администратору."},
		{"recipient missing", nil, &transfer.AccountError{Role: transfer.RoleRecipient, Username: "bob", Err: ledger.ErrAccountNotFound}, "Получатель @bob не найден в таблице."},
		{"self", nil, transfer.ErrSelfTransfer, selfTransferText},
		{"funds", nil, &transfer.FundsError{Balance: decimal.NewFromInt(5), Amount: decimal.NewFromInt(10)}, "Недостаточно средств: на балансе 5, требуется 10."},
		{"submit failed", nil, fmt.Errorf("%w: HTTP 500", transfer.ErrSubmitFailed), submitFailedText},
		{"source", nil, sheets.ErrDecode, "Ошибка доступа к таблице: " + sheets.ErrDecode.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePayer{res: tt.res, err: tt.err}
			got := NewService(testLedger(), p).Pay(context.Background(), Invocation{Username: "alice", Args: "@bob 12,5"})
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if len(p.calls) != 1 || p.calls[0] != "alice|@bob|12,5" {
				t.Errorf("Unexpected payer calls %v", p.calls)
			}
		})
	}
}

func TestPayUsage(t *testing.T) {
	p := &fakePayer{}
	s := NewService(testLedger(), p)
	for _, args := range []string{"", "bob", "   "} {
		if got := s.Pay(context.Background(), Invocation{Username: "alice", Args: args}); got != payUsageText {
			t.Errorf("Args %q: expected usage, got %q", args, got)
		}
	}
	if len(p.calls) != 0 {
		t.Errorf("Expected no payer calls, got %v", p.calls)
	}
}

func TestOps(t *testing.T) {
	l := testLedger()
	s := NewService(l, &fakePayer{})
	ctx := context.Background()

	want := "Последние операции:\n02.03 +1.50 от @bob\n01.03 -3 → @bob (долг)"
	if got := s.Ops(ctx, Invocation{Username: "alice"}); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if l.lastN != ledger.DefaultOpsCount {
		t.Errorf("Expected default count, got %d", l.lastN)
	}

	s.Ops(ctx, Invocation{Username: "alice", Args: "50"})
	if l.lastN != ledger.MaxOpsCount {
		t.Errorf("Expected count capped at %d, got %d", ledger.MaxOpsCount, l.lastN)
	}

	for _, args := range []string{"0", "abc", "-1"} {
		if got := s.Ops(ctx, Invocation{Username: "alice", Args: args}); got != opsUsageText {
			t.Errorf("Args %q: expected usage, got %q", args, got)
		}
	}
	if got := s.Ops(ctx, Invocation{Username: "carol"}); got != opsEmptyText {
		t.Errorf("Expected empty text, got %q", got)
	}
	if got := s.Ops(ctx, Invocation{}); got != noUsernameText {
		t.Errorf("Expected username prompt, got %q", got)
	}

	l.err = errors.New("boom")
	if got := s.Ops(ctx, Invocation{Username: "alice"}); got != "Ошибка доступа к таблице: boom" {
		t.Errorf("Unexpected reply %q", got)
	}
}
