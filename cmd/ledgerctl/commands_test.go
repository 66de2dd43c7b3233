package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/app"
	"github.com/angelmondragon/farmledger/internal/ingest"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/docstore"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Defaults()
	a, err := app.New(context.Background(), app.Params{Config: &cfg, Logger: logger.Nop(), Store: docstore.NewMemory()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestReadRecordsSkipsBlankLines(t *testing.T) {
	input := `{"id":"1","author":"Bot","content":"Maria x50 trigo (add)","timestamp":"2026-07-01T09:00:00Z"}

{"id":"2","author":"Bot","content":"bom dia","timestamp":"2026-07-01T09:01:00Z"}
`
	records, err := readRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1].ID)

	_, err = readRecords(strings.NewReader("{not json"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRunIngestWorkersAndPay(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	var out bytes.Buffer

	require.NoError(t, run(ctx, a, options{cmd: "workers", worker: "w1", name: "Maria", role: "trabalhador"}, nil, &out))

	out.Reset()
	input := `{"id":"1","author":"Bot","content":"Maria x50 trigo (add)","timestamp":"2026-07-01T09:00:00Z"}`
	require.NoError(t, run(ctx, a, options{cmd: "ingest", input: "-"}, strings.NewReader(input), &out))
	var result ingest.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 1, result.Stored)

	out.Reset()
	require.NoError(t, run(ctx, a, options{cmd: "pay", worker: "w1"}, nil, &out))
	assert.Contains(t, out.String(), "RECIBO DE PAGAMENTO")
	assert.Contains(t, out.String(), "$7.50")
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), newTestApp(t), options{cmd: "explode"}, nil, &bytes.Buffer{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("$1.234,50")
	require.NoError(t, err)
	assert.Equal(t, "1234.5", amount.String())
	amount, err = parseAmount("-10")
	require.NoError(t, err)
	assert.Equal(t, "-10", amount.String())
	_, err = parseAmount("twelve")
	require.Error(t, err)
}
