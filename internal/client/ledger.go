package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"miplata/internal/ledger"
	"miplata/internal/pagination"
)

// Gateways returns the ledger storage gateways backed by c. Owner scoping
// comes from the session token.
func Gateways(c *Client) ledger.Gateways {
	return ledger.Gateways{
		Accounts:     &AccountGateway{client: c},
		Transactions: &TransactionGateway{client: c},
		Installments: &InstallmentGateway{client: c},
	}
}

// AccountGateway stores accounts through the API.
type AccountGateway struct {
	client *Client
}

type accountBody struct {
	Name    string          `json:"name"`
	Color   string          `json:"color,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// List returns every account of the signed-in user.
func (g *AccountGateway) List(ctx context.Context) ([]ledger.Account, error) {
	var resp struct {
		Accounts []ledger.Account `json:"accounts"`
	}
	if err := g.client.do(ctx, http.MethodGet, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// Create stores a new account.
func (g *AccountGateway) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	var resp struct {
		Account ledger.Account `json:"account"`
	}
	body := accountBody{Name: a.Name, Color: a.Color, Balance: a.Balance}
	if err := g.client.do(ctx, http.MethodPost, "/accounts", body, &resp); err != nil {
		return ledger.Account{}, err
	}
	return resp.Account, nil
}

// Update replaces the name, color and balance of account id.
func (g *AccountGateway) Update(ctx context.Context, id string, a ledger.Account) (ledger.Account, error) {
	var resp struct {
		Account ledger.Account `json:"account"`
	}
	body := accountBody{Name: a.Name, Color: a.Color, Balance: a.Balance}
	if err := g.client.do(ctx, http.MethodPut, "/accounts/"+url.PathEscape(id), body, &resp); err != nil {
		return ledger.Account{}, err
	}
	return resp.Account, nil
}

// Delete removes account id and its transactions.
func (g *AccountGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), nil, nil)
}

// TransactionGateway stores transactions through the API.
type TransactionGateway struct {
	client *Client
}

type transactionBody struct {
	AccountID   string          `json:"account_id"`
	Type        ledger.Kind     `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func newTransactionBody(t ledger.Transaction) transactionBody {
	return transactionBody{
		AccountID:   t.AccountID,
		Type:        t.Kind,
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date,
	}
}

// List returns every transaction, newest first, walking all pages.
func (g *TransactionGateway) List(ctx context.Context) ([]ledger.Transaction, error) {
	var all []ledger.Transaction
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(pagination.MaxPageSize))

		var resp pagination.PageResponse[ledger.Transaction]
		if err := g.client.do(ctx, http.MethodGet, "/transactions?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)
		if !resp.HasNext() {
			break
		}
	}
	if all == nil {
		all = []ledger.Transaction{}
	}
	return all, nil
}

// Create stores a new transaction. The server adjusts the account balance.
func (g *TransactionGateway) Create(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	var resp struct {
		Transaction ledger.Transaction `json:"transaction"`
	}
	if err := g.client.do(ctx, http.MethodPost, "/transactions", newTransactionBody(t), &resp); err != nil {
		return ledger.Transaction{}, err
	}
	return resp.Transaction, nil
}

// Update replaces transaction id.
func (g *TransactionGateway) Update(ctx context.Context, id string, t ledger.Transaction) (ledger.Transaction, error) {
	var resp struct {
		Transaction ledger.Transaction `json:"transaction"`
	}
	if err := g.client.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id), newTransactionBody(t), &resp); err != nil {
		return ledger.Transaction{}, err
	}
	return resp.Transaction, nil
}

// Delete removes transaction id.
func (g *TransactionGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil)
}

// InstallmentGateway stores installment plans through the API.
type InstallmentGateway struct {
	client *Client
}

type installmentBody struct {
	Name              string          `json:"name"`
	Total             decimal.Decimal `json:"total"`
	TotalInstallments int             `json:"total_installments"`
	InstallmentsPaid  int             `json:"installments_paid"`
}

func newInstallmentBody(p ledger.InstallmentPlan) installmentBody {
	return installmentBody{
		Name:              p.Name,
		Total:             p.Total,
		TotalInstallments: p.TotalInstallments,
		InstallmentsPaid:  p.InstallmentsPaid,
	}
}

// List returns every installment plan.
func (g *InstallmentGateway) List(ctx context.Context) ([]ledger.InstallmentPlan, error) {
	var resp struct {
		Installments []ledger.InstallmentPlan `json:"installments"`
	}
	if err := g.client.do(ctx, http.MethodGet, "/installments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Installments, nil
}

// Create stores a new plan.
func (g *InstallmentGateway) Create(ctx context.Context, p ledger.InstallmentPlan) (ledger.InstallmentPlan, error) {
	var resp struct {
		Installment ledger.InstallmentPlan `json:"installment"`
	}
	if err := g.client.do(ctx, http.MethodPost, "/installments", newInstallmentBody(p), &resp); err != nil {
		return ledger.InstallmentPlan{}, err
	}
	return resp.Installment, nil
}

// Update replaces plan id.
func (g *InstallmentGateway) Update(ctx context.Context, id string, p ledger.InstallmentPlan) (ledger.InstallmentPlan, error) {
	var resp struct {
		Installment ledger.InstallmentPlan `json:"installment"`
	}
	if err := g.client.do(ctx, http.MethodPut, "/installments/"+url.PathEscape(id), newInstallmentBody(p), &resp); err != nil {
		return ledger.InstallmentPlan{}, err
	}
	return resp.Installment, nil
}

// Delete removes plan id.
func (g *InstallmentGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, http.MethodDelete, "/installments/"+url.PathEscape(id), nil, nil)
}

// Summary fetches the server-side dashboard for filter.
func (c *Client) Summary(ctx context.Context, filter ledger.Filter) (*ledger.Dashboard, error) {
	q := url.Values{}
	q.Set("range", string(filter.Range))
	if filter.Month != "" {
		q.Set("month", filter.Month)
	}
	for _, cat := range filter.Categories {
		q.Add("category", cat)
	}
	var d ledger.Dashboard
	if err := c.do(ctx, http.MethodGet, "/summary?"+q.Encode(), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
