package ledger

import (
	"errors"
	"testing"

	"sheet_ledger_bot/internal/resolution"
	"sheet_ledger_bot/internal/sheets"
)

func accountsTable() *sheets.Table {
	return &sheets.Table{
		TableID: "accounts",
		Headers: []string{"Username", "Имя", "Баланс"},
		Rows: []sheets.Record{
			{Number: 2, Values: map[string]string{"Username": "@Alice", "Имя": "Алиса", "Баланс": "5,00"}},
			{Number: 3, Values: map[string]string{"Username": "", "Имя": "Без ника", "Баланс": "100"}},
			{Number: 4, Values: map[string]string{"Username": "bob", "Имя": "", "Баланс": "20"}},
			{Number: 5, Values: map[string]string{"Username": " ALICE ", "Имя": "Дубликат", "Баланс": "999"}},
			{Number: 6, Values: map[string]string{"Username": "carol", "Имя": "Карина Смирнова", "Баланс": "нет"}},
		},
	}
}

func TestParseAccounts(t *testing.T) {
	records, err := ParseAccounts(accountsTable())
	if err != nil {
		t.Fatalf("ParseAccounts: unexpected error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected rows without username to be skipped, got %d records", len(records))
	}
	if records[0].Username != "Alice" || records[0].Row != 2 {
		t.Errorf("Expected leading @ to be stripped, got %+v", records[0])
	}
	if records[1].Name() != "@bob" {
		t.Errorf("Expected name fallback @bob, got %q", records[1].Name())
	}
	if !records[3].Balance.IsZero() {
		t.Errorf("Expected unparseable balance to read as zero, got %s", records[3].Balance)
	}
}

func TestParseAccountsMissingColumns(t *testing.T) {
	table := &sheets.Table{
		Headers: []string{"Ник"},
		Rows:    []sheets.Record{{Number: 2, Values: map[string]string{"Ник": "dave"}}},
	}
	records, err := ParseAccounts(table)
	if err != nil {
		t.Fatalf("ParseAccounts: unexpected error: %v", err)
	}
	if len(records) != 1 || !records[0].Balance.IsZero() || records[0].DisplayName != "" {
		t.Errorf("Expected zero balance and blank name, got %+v", records)
	}

	_, err = ParseAccounts(&sheets.Table{Headers: []string{"Имя", "Баланс"}})
	if !errors.Is(err, resolution.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound for missing username column, got %v", err)
	}
}

func TestParseAccountsNameColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"username is not a name", []string{"Username", "Баланс"}, "@alice"},
		{"russian header", []string{"Username", "Имя", "Баланс"}, "Алиса"},
		{"english header", []string{"Username", "Display name", "Баланс"}, "Алиса"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]string{"Username": "alice", "Баланс": "1"}
			for _, h := range tt.headers {
				if h == "Имя" || h == "Display name" {
					values[h] = "Алиса"
				}
			}
			records, err := ParseAccounts(&sheets.Table{
				Headers: tt.headers,
				Rows:    []sheets.Record{{Number: 2, Values: values}},
			})
			if err != nil {
				t.Fatalf("ParseAccounts: unexpected error: %v", err)
			}
			if len(records) != 1 || records[0].Name() != tt.want {
				t.Errorf("Expected name %q, got %+v", tt.want, records)
			}
		})
	}
}

func TestFindAccountFirstMatchWins(t *testing.T) {
	records, _ := ParseAccounts(accountsTable())
	for _, query := range []string{"alice", "@ALICE", "  Alice "} {
		acc, ok := FindAccount(records, query)
		if !ok {
			t.Errorf("FindAccount(%q): expected a match", query)
			continue
		}
		if acc.Row != 2 || acc.DisplayName != "Алиса" {
			t.Errorf("FindAccount(%q): expected first row, got %+v", query, acc)
		}
	}
	if _, ok := FindAccount(records, "mallory"); ok {
		t.Error("Expected no match for unknown user")
	}
	if _, ok := FindAccount(records, "@"); ok {
		t.Error("Expected empty key never to match")
	}
}

func TestFindAccountByName(t *testing.T) {
	records, _ := ParseAccounts(accountsTable())

	acc, ok := FindAccountByName(records, "карина   смирнова")
	if !ok || acc.Username != "carol" {
		t.Errorf("Expected match by display name, got %+v (ok=%v)", acc, ok)
	}
	acc, ok = FindAccountByName(records, "@bob")
	if !ok || acc.Username != "bob" {
		t.Errorf("Expected username fallback, got %+v (ok=%v)", acc, ok)
	}
	if _, ok := FindAccountByName(records, "Никто"); ok {
		t.Error("Expected no match")
	}
}
