package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gatewaymonitor/database"
	"gatewaymonitor/models"

	"github.com/spf13/cast"
)

// ErrInvalidPendingCount is returned when the count query yields a value that is not an integer
var ErrInvalidPendingCount = errors.New("pending count is not an integer")

// PaymentRepository counts recent pending payments. Each call opens and closes its own
// connection from connString.
type PaymentRepository interface {
	CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error)
}

// NewPaymentRepository returns the repository for the given driver name
func NewPaymentRepository(driver string) (PaymentRepository, error) {
	switch driver {
	case "sqlserver":
		return NewSQLServerPaymentRepository(), nil
	case "postgres":
		return NewPostgresPaymentRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// SQLServerPaymentRepository reads dbo.pagamento from SQL Server
type SQLServerPaymentRepository struct{}

// NewSQLServerPaymentRepository creates a new SQL Server payment repository
func NewSQLServerPaymentRepository() *SQLServerPaymentRepository {
	return &SQLServerPaymentRepository{}
}

// CountRecentPending counts pending payments of the filtered method created inside the window.
// The connection string is normalized before opening.
func (r *SQLServerPaymentRepository) CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM dbo.pagamento
		WHERE status = @status
		  AND MeioPagamento = @method
		  AND datacadastro >= DATEADD(SECOND, -@window, GETDATE())
	`

	db, err := database.OpenSQLServer(ctx, connString)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var raw any
	err = db.QueryRowContext(ctx, query,
		sql.Named("status", filter.StatusCode),
		sql.Named("method", filter.PaymentMethodCode),
		sql.Named("window", windowSeconds(filter)),
	).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending payments: %w", err)
	}

	return toPendingCount(raw)
}

// PostgresPaymentRepository reads dbo.pagamento from Postgres
type PostgresPaymentRepository struct{}

// NewPostgresPaymentRepository creates a new Postgres payment repository
func NewPostgresPaymentRepository() *PostgresPaymentRepository {
	return &PostgresPaymentRepository{}
}

// CountRecentPending counts pending payments of the filtered method created inside the window
func (r *PostgresPaymentRepository) CountRecentPending(ctx context.Context, connString string, filter models.PendingFilter) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM dbo.pagamento
		WHERE status = $1
		  AND meiopagamento = $2
		  AND datacadastro >= now() - make_interval(secs => $3)
	`

	conn, err := database.ConnectPostgres(ctx, connString)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	var raw any
	err = conn.QueryRow(ctx, query,
		int32(filter.StatusCode),
		int32(filter.PaymentMethodCode),
		float64(windowSeconds(filter)),
	).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending payments: %w", err)
	}

	return toPendingCount(raw)
}

func windowSeconds(filter models.PendingFilter) int64 {
	return int64(filter.Window.Seconds())
}

// toPendingCount converts the scalar returned by the count query into an int32-ranged int
func toPendingCount(raw any) (int, error) {
	var (
		n   int64
		err error
	)

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPendingCount, v)
		}
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPendingCount, v)
		}
	case []byte:
		raw = string(v)
	}

	if s, ok := raw.(string); ok {
		n, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	} else {
		n, err = cast.ToInt64E(raw)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPendingCount, err)
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d overflows int32", ErrInvalidPendingCount, n)
	}

	return int(n), nil
}
