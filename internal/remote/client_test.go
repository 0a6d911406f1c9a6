package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/internal/tracker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateExpenseAssignsServerID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/expenses", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var exp tracker.Expense
		require.NoError(t, json.NewDecoder(r.Body).Decode(&exp))
		require.Equal(t, "lunch", exp.Description)

		exp.ID = "srv-1"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(exp))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	created, err := client.CreateExpense(context.Background(), tracker.Expense{
		ID:          "local-abc",
		Description: "lunch",
		Amount:      decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	require.Equal(t, "srv-1", created.ID)
	require.True(t, created.Amount.Equal(decimal.RequireFromString("12.50")))
}

func TestNon2xxWrapsRemoteSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreateExpense(context.Background(), tracker.Expense{Description: "x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrRemote))
}

func TestDeleteExpenseEscapesID(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.DeleteExpense(context.Background(), "a/b"))
	require.Equal(t, "/expenses/a%2Fb", gotPath)
}

func TestGetCurrentBudgetMissingIsNil(t *testing.T) {
	t.Run("404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		b, err := NewClient(server.URL).GetCurrentBudget(context.Background())
		require.NoError(t, err)
		require.Nil(t, b)
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		b, err := NewClient(server.URL).GetCurrentBudget(context.Background())
		require.NoError(t, err)
		require.Nil(t, b)
	})
}

func TestGetCurrentBudgetFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/budget", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"month":"2025-04","limit":"10000"}`))
	}))
	defer server.Close()

	b, err := NewClient(server.URL).GetCurrentBudget(context.Background())
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, "2025-04", b.Month)
	require.True(t, b.Limit.Equal(decimal.RequireFromString("10000")))
}

func TestListExpenses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"srv-1","description":"coffee","amount":"4.8"}]`))
	}))
	defer server.Close()

	listed, err := NewClient(server.URL).ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "srv-1", listed[0].ID)
}

func TestUnreachableServerWrapsRemoteSentinel(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.ListExpenses(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrRemote))
}
