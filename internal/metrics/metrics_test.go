package metrics

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRepository_Observe(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewRepository(reg)

	m.Observe("user", "create", "", 5*time.Millisecond)
	m.Observe("user", "create", "duplicate", 3*time.Millisecond)
	m.Observe("group", "add_member", "duplicate", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("user", "create", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("group", "add_member", "duplicate")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))

	expected := `
# HELP giftregistry_repository_operation_errors_total Repository operations that returned an error, by error kind.
# TYPE giftregistry_repository_operation_errors_total counter
giftregistry_repository_operation_errors_total{kind="duplicate",operation="add_member",repository="group"} 1
giftregistry_repository_operation_errors_total{kind="duplicate",operation="create",repository="user"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.errors, strings.NewReader(expected)))
}

func TestRepository_NilIsNoop(t *testing.T) {
	var m *Repository
	assert.NotPanics(t, func() {
		m.Observe("user", "create", "database", time.Millisecond)
	})
}

func TestRegisterPool(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	reg := prometheus.NewRegistry()
	RegisterPool(reg, db, "sqlite")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "go_sql_max_open_connections")
}
