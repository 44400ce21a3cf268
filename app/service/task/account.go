package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

type dbSource interface {
	LookupUser(ctx context.Context, email string) ([]map[string]any, error)
}

type crmSource interface {
	SearchSalesOrders(ctx context.Context, email string) ([]map[string]any, error)
}

// accountTool merges the production db record and the CRM sales orders for
// an email. A failing source counts as absent, only both-empty yields the
// NO_ACCOUNT sentinel.
type accountTool struct {
	db  dbSource
	crm crmSource
}

func (t *accountTool) Name() string {
	return KindQueryUser
}

func (t *accountTool) Description() string {
	return "Look up a customer account by email in the production database and the CRM. " +
		"Input must be a JSON object with a user_email field."
}

func (t *accountTool) Call(ctx context.Context, input string) (string, error) {
	var params map[string]string
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("invalid params JSON: %w", err)
	}

	email := strings.TrimSpace(params[ParamUserEmail])

	var fromDB, fromCRM []map[string]any

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := t.db.LookupUser(gctx, email)
		if err != nil {
			slog.Warn("Account db lookup failed", "email", email, "error", err)
			return nil
		}
		fromDB = rows
		return nil
	})

	g.Go(func() error {
		orders, err := t.crm.SearchSalesOrders(gctx, email)
		if err != nil {
			slog.Warn("CRM lookup failed", "email", email, "error", err)
			return nil
		}
		fromCRM = orders
		return nil
	})

	_ = g.Wait()

	if len(fromDB) == 0 && len(fromCRM) == 0 {
		return SentinelNoAccount, nil
	}

	merged, err := json.MarshalIndent(map[string]any{
		"from_db":  fromDB,
		"from_crm": fromCRM,
	}, "", "  ")
	if err != nil {
		return SentinelNoAccount, nil
	}

	return string(merged), nil
}
