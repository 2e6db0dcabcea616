package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"miplata/internal/config"
	"miplata/internal/logger"
	"miplata/internal/testutil"
	"miplata/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// testApp holds the full application stack for end-to-end tests.
type testApp struct {
	Router *gin.Engine
}

func setupApp(t *testing.T, rateLimit int) *testApp {
	t.Helper()

	cfg := *config.Get()
	cfg.AuthRateLimit = rateLimit
	cfg.FrontendBaseURL = ""

	db := testutil.SetupTestDB(t)
	return &testApp{Router: NewRouter(db, &cfg, nil)}
}

func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func (app *testApp) registerUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Ana","last_name":"Gómez"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

func (app *testApp) createAccount(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["account"].(map[string]interface{})["id"].(string)
}

func (app *testApp) createTransaction(t *testing.T, token, accountID, kind, amount, category, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"account_id":%q,"type":%q,"amount":%q,"description":"test","category":%q,"date":%q}`,
		accountID, kind, amount, category, date)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)
}

func (app *testApp) accountBalance(t *testing.T, token, accountID string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["account"].(map[string]interface{})["balance"].(string)
}

func TestHealthAndDocs(t *testing.T) {
	app := setupApp(t, 100)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health body %s", rec.Body.String())
	}

	rec = app.request("GET", "/swagger/doc.json", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected swagger doc, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/summary") {
		t.Error("swagger doc should describe the summary route")
	}
}

func TestAuthFlow_SessionLifecycle(t *testing.T) {
	app := setupApp(t, 100)

	registered := app.registerUser(t, "ana@test.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", registered)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if email := parseJSON(t, rec)["user"].(map[string]interface{})["email"]; email != "ana@test.com" {
		t.Errorf("expected ana@test.com, got %v", email)
	}

	// A new sign-in replaces the previous session.
	loggedIn := app.loginUser(t, "ana@test.com", "password123")
	if rec := app.request("GET", "/api/v1/profile", "", registered); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected old token to be rejected, got %d", rec.Code)
	}

	if rec := app.request("POST", "/api/v1/auth/logout", "", loggedIn); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/profile", "", loggedIn)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
	if code := parseJSON(t, rec)["error"].(map[string]interface{})["code"]; code != "SESSION_EXPIRED" {
		t.Errorf("expected SESSION_EXPIRED, got %v", code)
	}

	rec = app.request("POST", "/api/v1/auth/login", `{"email":"ana@test.com","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on bad password, got %d", rec.Code)
	}
}

func TestLedgerFlow_BalancesFollowTransactions(t *testing.T) {
	app := setupApp(t, 100)
	token := app.registerUser(t, "ledger@test.com", "password123")
	today := time.Now().Format("2006-01-02")

	accountID := app.createAccount(t, token, `{"name":"Banco","balance":"1000"}`)
	if got := app.accountBalance(t, token, accountID); got != "1000" {
		t.Fatalf("expected opening balance 1000, got %s", got)
	}

	expenseID := app.createTransaction(t, token, accountID, "expense", "250", "Comida", today)
	app.createTransaction(t, token, accountID, "income", "100", "Sueldo", today)
	if got := app.accountBalance(t, token, accountID); got != "850" {
		t.Fatalf("expected 850 after two transactions, got %s", got)
	}

	// Replacing the expense reverts the old amount and applies the new one.
	body := fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":"300","description":"test","category":"Comida","date":%q}`, accountID, today)
	if rec := app.request("PUT", "/api/v1/transactions/"+expenseID, body, token); rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, accountID); got != "800" {
		t.Fatalf("expected 800 after update, got %s", got)
	}

	// Moving the expense to another account rebalances both.
	otherID := app.createAccount(t, token, `{"name":"Efectivo"}`)
	body = fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":"300","description":"test","category":"Comida","date":%q}`, otherID, today)
	if rec := app.request("PUT", "/api/v1/transactions/"+expenseID, body, token); rec.Code != http.StatusOK {
		t.Fatalf("move failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, accountID); got != "1100" {
		t.Errorf("expected 1100 on the old account, got %s", got)
	}
	if got := app.accountBalance(t, token, otherID); got != "-300" {
		t.Errorf("expected -300 on the new account, got %s", got)
	}

	if rec := app.request("DELETE", "/api/v1/transactions/"+expenseID, "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := app.accountBalance(t, token, otherID); got != "0" {
		t.Errorf("expected 0 after delete, got %s", got)
	}

	rec := app.request("GET", "/api/v1/transactions?page_size=10", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Errorf("expected 1 transaction left, got %.0f", total)
	}

	// Deleting the account removes its transactions too.
	if rec := app.request("DELETE", "/api/v1/accounts/"+accountID, "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("delete account failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/transactions", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected no transactions after account delete, got %.0f", total)
	}
}

func TestSummaryFlow(t *testing.T) {
	app := setupApp(t, 100)
	token := app.registerUser(t, "summary@test.com", "password123")
	now := time.Now()
	today := now.Format("2006-01-02")
	old := now.AddDate(-2, 0, 0).Format("2006-01-02")

	accountID := app.createAccount(t, token, `{"name":"Banco","balance":"1000"}`)
	app.createTransaction(t, token, accountID, "expense", "250", "Comida", today)
	app.createTransaction(t, token, accountID, "expense", "50", "Transporte", today)
	app.createTransaction(t, token, accountID, "income", "100", "Sueldo", today)
	app.createTransaction(t, token, accountID, "expense", "999", "Comida", old)

	rec := app.request("GET", "/api/v1/summary?range=3m", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	d := parseJSON(t, rec)

	// The balance covers every account regardless of the filter.
	if d["total_balance"] != "-199" {
		t.Errorf("expected total balance -199, got %v", d["total_balance"])
	}
	totals := d["totals"].(map[string]interface{})
	if totals["expense"] != "300" || totals["income"] != "100" || totals["net"] != "-200" {
		t.Errorf("unexpected totals %v", totals)
	}
	categories := d["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", categories)
	}
	if top := categories[0].(map[string]interface{}); top["category"] != "Comida" || top["amount"] != "250" {
		t.Errorf("expected Comida 250 first, got %v", top)
	}
	if monthly := d["monthly"].([]interface{}); len(monthly) != 1 {
		t.Errorf("expected one month of activity, got %v", monthly)
	}

	rec = app.request("GET", "/api/v1/summary?range=12m&category=Transporte", "", token)
	d = parseJSON(t, rec)
	if got := d["totals"].(map[string]interface{})["expense"]; got != "50" {
		t.Errorf("expected category filter to keep 50, got %v", got)
	}

	rec = app.request("GET", "/api/v1/summary?range=month", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month without a month, got %d", rec.Code)
	}
}

func TestInstallmentFlow(t *testing.T) {
	app := setupApp(t, 100)
	token := app.registerUser(t, "cuotas@test.com", "password123")

	rec := app.request("POST", "/api/v1/installments",
		`{"name":"Heladera","total":"1000","total_installments":3,"installments_paid":1}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	plan := parseJSON(t, rec)["installment"].(map[string]interface{})
	if plan["paid"] != "333.33" || plan["remaining"] != "666.67" {
		t.Errorf("unexpected plan amounts %v", plan)
	}

	body := `{"name":"Heladera","total":"1000","total_installments":3,"installments_paid":3}`
	rec = app.request("PUT", "/api/v1/installments/"+plan["id"].(string), body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["installment"].(map[string]interface{})["paid"]; got != "1000" {
		t.Errorf("expected fully paid plan, got %v", got)
	}
}

func TestTenantIsolation(t *testing.T) {
	app := setupApp(t, 100)
	alice := app.registerUser(t, "alice@test.com", "password123")
	bob := app.registerUser(t, "bob@test.com", "password123")

	accountID := app.createAccount(t, alice, `{"name":"Privada","balance":"10"}`)

	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", bob)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's account, got %d", rec.Code)
	}

	body := fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":"1","description":"x","date":"2024-01-01"}`, accountID)
	rec = app.request("POST", "/api/v1/transactions", body, bob)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 writing to another user's account, got %d", rec.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	app := setupApp(t, 2)

	for i := 0; i < 2; i++ {
		rec := app.request("POST", "/api/v1/auth/login", `{"email":"nobody@test.com","password":"password123"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := app.request("POST", "/api/v1/auth/login", `{"email":"nobody@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if code := parseJSON(t, rec)["error"].(map[string]interface{})["code"]; code != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %v", code)
	}

	// Protected routes are not limited.
	if rec := app.request("GET", "/api/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("expected health to stay reachable, got %d", rec.Code)
	}
}

func TestGoogleSignInDisabled(t *testing.T) {
	app := setupApp(t, 100)

	rec := app.request("GET", "/api/v1/auth/google/login", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
