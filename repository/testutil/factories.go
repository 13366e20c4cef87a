package testutil

import (
	"context"
	"testing"
	"time"

	"gatewaymonitor/database"

	"github.com/stretchr/testify/require"
)

// Payment status and method codes used by the fixtures
const (
	StatusPending = 0
	StatusPaid    = 1
	MethodGateway = 6
	MethodPix     = 2
)

// TestPayment is a row inserted into dbo.pagamento
type TestPayment struct {
	Status        int
	PaymentMethod int
	Age           time.Duration // how long before now the payment was created
}

// CreateTestPendingPayment creates a pending gateway payment created age ago
func CreateTestPendingPayment(age time.Duration) TestPayment {
	return TestPayment{Status: StatusPending, PaymentMethod: MethodGateway, Age: age}
}

// InsertPayments inserts the given payments into the test database
func InsertPayments(t *testing.T, databaseURL string, payments ...TestPayment) {
	t.Helper()
	ctx := context.Background()

	conn, err := database.ConnectPostgres(ctx, databaseURL)
	require.NoError(t, err)
	defer conn.Close(ctx)

	for _, p := range payments {
		_, err := conn.Exec(ctx,
			`INSERT INTO dbo.pagamento (status, meiopagamento, datacadastro)
			 VALUES ($1, $2, now() - make_interval(secs => $3))`,
			int32(p.Status), int32(p.PaymentMethod), p.Age.Seconds(),
		)
		require.NoError(t, err)
	}
}
