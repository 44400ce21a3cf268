package appdb

import (
	"context"
	"fairwaydesk/app/config"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
)

const lookupUserQuery = `
	SELECT *
	FROM public."user" u
	JOIN public."user_product" up ON up.user_id = u.id
	JOIN product p ON up.product_id = p.id
	WHERE u.email = $1
`

var _ do.Shutdownable = (*Client)(nil)

// Client reads subscription records from the production application
// database.
type Client struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s",
		url.QueryEscape(cfg.DB.User),
		url.QueryEscape(cfg.DB.Pass),
		cfg.DB.Host,
		cfg.DB.Database,
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	return &Client{
		cfg:  cfg,
		pool: pool,
	}, nil
}

// LookupUser returns the user rows joined with their purchased products,
// empty when the email has no account.
func (c *Client) LookupUser(ctx context.Context, email string) ([]map[string]any, error) {
	rows, err := c.pool.Query(ctx, lookupUserQuery, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read user row: %w", err)
		}

		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}

		result = append(result, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return result, nil
}

func (c *Client) Shutdown() error {
	c.pool.Close()
	return nil
}
