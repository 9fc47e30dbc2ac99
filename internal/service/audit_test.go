package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms-console/internal/model"
)

func TestAuditDisabledWithoutDB(t *testing.T) {
	a := NewAudit(nil)
	assert.False(t, a.Enabled())

	require.NoError(t, a.RecordPrint(context.Background(), "ops", []string{"b1"}, 1))
	require.NoError(t, a.RecordLogin(context.Background(), model.AdminLoginLog{Username: "ops"}))

	jobs, total, err := a.ListPrintJobs(context.Background(), PrintJobQuery{})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, total)

	logs, total, err := a.ListLoginLogs(context.Background(), LoginLogQuery{})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Zero(t, total)
}

func TestPrintJobQueryNormalize(t *testing.T) {
	q := PrintJobQuery{Page: 0, Size: 500}
	q.normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Size)

	q = PrintJobQuery{Page: 3, Size: 20}
	q.normalize()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Size)
}

func TestNilAuditIsDisabled(t *testing.T) {
	var a *Audit
	assert.False(t, a.Enabled())
}
