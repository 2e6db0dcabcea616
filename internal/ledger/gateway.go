package ledger

import "context"

// AccountGateway is the storage contract for accounts. Implementations
// scope every call to the signed-in owner; the ledger never checks
// ownership itself.
type AccountGateway interface {
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, id string, a Account) (Account, error)
	Delete(ctx context.Context, id string) error
}

// TransactionGateway is the storage contract for transactions. List returns
// newest first. Create, Update and Delete also adjust the referenced
// account balances on the storage side.
type TransactionGateway interface {
	List(ctx context.Context) ([]Transaction, error)
	Create(ctx context.Context, t Transaction) (Transaction, error)
	Update(ctx context.Context, id string, t Transaction) (Transaction, error)
	Delete(ctx context.Context, id string) error
}

// InstallmentGateway is the storage contract for installment plans.
type InstallmentGateway interface {
	List(ctx context.Context) ([]InstallmentPlan, error)
	Create(ctx context.Context, p InstallmentPlan) (InstallmentPlan, error)
	Update(ctx context.Context, id string, p InstallmentPlan) (InstallmentPlan, error)
	Delete(ctx context.Context, id string) error
}

// Gateways bundles the three collections a Mutator writes through.
type Gateways struct {
	Accounts     AccountGateway
	Transactions TransactionGateway
	Installments InstallmentGateway
}

// Level is the severity of a Notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, dismissible message for the user.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives the Mutator's notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }
