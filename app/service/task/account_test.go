package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	rows []map[string]any
	err  error
}

func (f *fakeDB) LookupUser(_ context.Context, _ string) ([]map[string]any, error) {
	return f.rows, f.err
}

type fakeCRM struct {
	orders []map[string]any
	err    error
}

func (f *fakeCRM) SearchSalesOrders(_ context.Context, _ string) ([]map[string]any, error) {
	return f.orders, f.err
}

func callAccount(t *testing.T, db dbSource, crm crmSource) string {
	t.Helper()

	tool := &accountTool{db: db, crm: crm}

	out, err := tool.Call(context.Background(), `{"user_email":"a@b.com"}`)
	require.NoError(t, err)

	return out
}

func TestAccountTool_BothEmpty(t *testing.T) {
	out := callAccount(t, &fakeDB{}, &fakeCRM{})

	assert.Equal(t, SentinelNoAccount, out)
}

func TestAccountTool_MergesBothSources(t *testing.T) {
	out := callAccount(t,
		&fakeDB{rows: []map[string]any{{"email": "a@b.com", "product_name": "Super Pass"}}},
		&fakeCRM{orders: []map[string]any{{"Subject": "SO-1042"}}},
	)

	assert.Contains(t, out, "from_db")
	assert.Contains(t, out, "Super Pass")
	assert.Contains(t, out, "from_crm")
	assert.Contains(t, out, "SO-1042")
}

func TestAccountTool_OneSourceSuffices(t *testing.T) {
	out := callAccount(t,
		&fakeDB{},
		&fakeCRM{orders: []map[string]any{{"Subject": "SO-7"}}},
	)

	assert.NotEqual(t, SentinelNoAccount, out)
	assert.Contains(t, out, "SO-7")
}

func TestAccountTool_FailingSourceCountsAsAbsent(t *testing.T) {
	out := callAccount(t,
		&fakeDB{err: errors.New("connection refused")},
		&fakeCRM{orders: []map[string]any{{"Subject": "SO-9"}}},
	)

	assert.Contains(t, out, "SO-9")
}

func TestAccountTool_BothFail(t *testing.T) {
	out := callAccount(t,
		&fakeDB{err: errors.New("db down")},
		&fakeCRM{err: errors.New("crm down")},
	)

	assert.Equal(t, SentinelNoAccount, out)
}

func TestAccountTool_RejectsBadInput(t *testing.T) {
	tool := &accountTool{db: &fakeDB{}, crm: &fakeCRM{}}

	_, err := tool.Call(context.Background(), "not json")

	assert.Error(t, err)
}
