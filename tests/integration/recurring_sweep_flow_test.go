package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRecurringSweepFlow_MaterializesViaTaskEndpoint(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "sweep@test.com", "password123")

	categoryID := app.createCategory(t, token, "Subscriptions", "expense")
	accountID := app.createAccount(t, token, "Checking", "checking", 2000000)

	today := time.Now().Format("2006-01-02")
	rec := app.request("POST", "/api/v1/recurring",
		fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":49900,"description":"Streaming","type":"expense","frequency":"monthly","start_date":%q}`,
			accountID, categoryID, today), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating rule, got %d: %s", rec.Code, rec.Body.String())
	}

	// First sweep materializes the due rule
	rec = app.taskRequest("/api/v1/internal/tasks/recurring-sweep", testTasksKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on sweep, got %d: %s", rec.Code, rec.Body.String())
	}
	if processed := parseJSON(t, rec)["processed"].(float64); processed != 1 {
		t.Fatalf("expected 1 rule processed, got %.0f", processed)
	}

	rec = app.request("GET", "/api/v1/transactions", "", token)
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 1 {
		t.Fatalf("expected 1 materialized transaction, got %.0f", result["total_items"].(float64))
	}
	tx := result["data"].([]interface{})[0].(map[string]interface{})
	if tx["source"] != "recurring" {
		t.Errorf("expected source recurring, got %v", tx["source"])
	}
	if tx["amount"].(float64) != 49900 {
		t.Errorf("expected amount 49900, got %.0f", tx["amount"].(float64))
	}

	// The cursor advanced a month, so an immediate re-sweep is a no-op
	rec = app.taskRequest("/api/v1/internal/tasks/recurring-sweep", testTasksKey)
	if processed := parseJSON(t, rec)["processed"].(float64); processed != 0 {
		t.Errorf("expected 0 rules processed on re-sweep, got %.0f", processed)
	}
	rec = app.request("GET", "/api/v1/transactions", "", token)
	if n := parseJSON(t, rec)["total_items"].(float64); n != 1 {
		t.Errorf("expected still 1 transaction after re-sweep, got %.0f", n)
	}

	// The owner was notified about the materialization
	rec = app.request("GET", "/api/v1/notifications", "", token)
	found := false
	for _, raw := range parseJSON(t, rec)["data"].([]interface{}) {
		if raw.(map[string]interface{})["type"] == "recurring_created" {
			found = true
		}
	}
	if !found {
		t.Error("expected a recurring_created notification")
	}
}

func TestRecurringSweepFlow_RequiresAPIKey(t *testing.T) {
	app := setupApp(t)

	rec := app.taskRequest("/api/v1/internal/tasks/recurring-sweep", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", rec.Code)
	}

	rec = app.taskRequest("/api/v1/internal/tasks/recurring-sweep", "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}
}

func TestRecurringSweepFlow_TransferRuleRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "norecur@test.com", "password123")

	accountID := app.createAccount(t, token, "Checking", "checking", 0)
	today := time.Now().Format("2006-01-02")

	rec := app.request("POST", "/api/v1/recurring",
		fmt.Sprintf(`{"account_id":%q,"amount":10000,"type":"transfer","frequency":"monthly","start_date":%q}`,
			accountID, today), token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a transfer rule, got %d: %s", rec.Code, rec.Body.String())
	}
}
