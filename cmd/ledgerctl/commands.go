package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/abuse"
	"github.com/angelmondragon/farmledger/internal/app"
	"github.com/angelmondragon/farmledger/internal/managers"
	"github.com/angelmondragon/farmledger/internal/parser"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/money"
	"github.com/angelmondragon/farmledger/pkg/pagination"
)

const commandList = "ingest|summary|statement|pay|receipts|void|abuse|workload|expectations|credit|workers|legacy"

// maxRecordBytes bounds one JSON line; embeds with long descriptions exceed bufio's default.
const maxRecordBytes = 1 << 20

type options struct {
	cmd        string
	input      string
	worker     string
	manager    string
	service    string
	activity   string
	payment    string
	reopen     bool
	amount     string
	reason     string
	category   string
	decision   string
	name       string
	role       string
	account    string
	deactivate bool
	pay        bool
	limit      int
	offset     int
}

func (o options) page() pagination.Params {
	return pagination.Params{Limit: o.limit, Offset: o.offset}
}

func run(ctx context.Context, a *app.App, opts options, stdin io.Reader, out io.Writer) error {
	switch opts.cmd {
	case "ingest":
		return runIngest(ctx, a, opts, stdin, out)
	case "summary":
		summary, err := a.Ledger.Summary(ctx)
		if err != nil {
			return err
		}
		balance, known, err := a.Ledger.CurrentBalance(ctx)
		if err != nil {
			return err
		}
		view := map[string]any{"summary": summary}
		if known {
			view["balance"] = balance
		}
		return writeJSON(out, view)
	case "statement":
		statement, err := a.Payments.Statement(ctx, opts.worker)
		if err != nil {
			return err
		}
		return writeJSON(out, statement)
	case "pay":
		return runPay(ctx, a, opts, out)
	case "receipts":
		if opts.payment != "" {
			record, err := a.Payments.Get(ctx, opts.payment)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, record.Receipt)
			return err
		}
		list, err := a.Payments.List(ctx, opts.worker, opts.page())
		if err != nil {
			return err
		}
		return writeJSON(out, list)
	case "void":
		return runVoid(ctx, a, opts, out)
	case "abuse":
		return runAbuse(ctx, a, opts, out)
	case "workload":
		return runWorkload(ctx, a, opts, out)
	case "expectations":
		result, err := a.Managers.Sync(ctx)
		if err != nil {
			return err
		}
		list, err := a.Managers.Expectations(ctx, opts.manager, "")
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"sync": result, "expectations": list})
	case "credit":
		amount, err := parseAmount(opts.amount)
		if err != nil {
			return err
		}
		entry, err := a.Managers.AdjustCredit(ctx, managers.AdjustCreditInput{
			ManagerID: opts.manager,
			Amount:    amount,
			Reason:    opts.reason,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, entry)
	case "workers":
		return runWorkers(ctx, a, opts, out)
	case "legacy":
		doc, err := a.Ledger.Legacy(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, doc)
	}
	return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown -cmd %q (want %s)", opts.cmd, commandList)
}

func runIngest(ctx context.Context, a *app.App, opts options, stdin io.Reader, out io.Writer) error {
	in := stdin
	if opts.input != "" && opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	records, err := readRecords(in)
	if err != nil {
		return err
	}
	result, err := a.Ingest.Ingest(ctx, records)
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

// readRecords decodes one RawLogRecord per non-empty line.
func readRecords(in io.Reader) ([]parser.RawLogRecord, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxRecordBytes)
	var records []parser.RawLogRecord
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record parser.RawLogRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("line %d is not a log record", line))
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return records, nil
}

func runPay(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	var (
		receipt string
		err     error
	)
	switch {
	case opts.activity != "":
		record, payErr := a.Payments.PayTransaction(ctx, opts.worker, opts.activity)
		if record != nil {
			receipt = record.Receipt
		}
		err = payErr
	case opts.service != "":
		svc, parseErr := enums.ParseServiceType(opts.service)
		if parseErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid -service")
		}
		record, payErr := a.Payments.PayService(ctx, opts.worker, svc)
		if record != nil {
			receipt = record.Receipt
		}
		err = payErr
	default:
		record, payErr := a.Payments.PayAll(ctx, opts.worker)
		if record != nil {
			receipt = record.Receipt
		}
		err = payErr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, receipt)
	return err
}

func runVoid(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	if opts.reopen {
		reopened, err := a.Payments.ReopenPayment(ctx, opts.payment)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"payment": opts.payment, "reopened": reopened})
	}
	record, err := a.Payments.DeletePayment(ctx, opts.payment)
	if err != nil {
		return err
	}
	return writeJSON(out, record)
}

func runAbuse(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	if opts.decision != "" {
		action, err := a.Abuse.RecordDecision(ctx, abuse.DecisionInput{
			WorkerID: opts.worker,
			Category: enums.AbuseCategory(opts.category),
			Decision: enums.AbuseDecision(opts.decision),
			Note:     opts.reason,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, action)
	}
	report, err := a.Abuse.Report(ctx, opts.worker)
	if err != nil {
		return err
	}
	return writeJSON(out, report)
}

func runWorkload(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	if opts.pay {
		amount := decimal.Zero
		if opts.amount != "" {
			var err error
			if amount, err = parseAmount(opts.amount); err != nil {
				return err
			}
		}
		record, err := a.Managers.Pay(ctx, managers.PayInput{ManagerID: opts.manager, Amount: amount, Note: opts.reason})
		if err != nil {
			return err
		}
		return writeJSON(out, record)
	}
	snapshots, err := a.Managers.Workload(ctx)
	if err != nil {
		return err
	}
	dist, err := a.Managers.Distribution(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{"workload": snapshots, "distribution": dist})
}

func runWorkers(ctx context.Context, a *app.App, opts options, out io.Writer) error {
	switch {
	case opts.deactivate:
		if err := a.Workers.Deactivate(ctx, opts.worker); err != nil {
			return err
		}
		profile, err := a.Workers.Get(ctx, opts.worker)
		if err != nil {
			return err
		}
		return writeJSON(out, profile)
	case opts.worker != "" && opts.name != "":
		role, err := enums.ParseWorkerRole(opts.role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid -role")
		}
		profile, err := a.Workers.Upsert(ctx, workers.Profile{
			ID:              opts.worker,
			Name:            opts.name,
			Role:            role,
			Active:          true,
			LinkedAccountID: opts.account,
		})
		if err != nil {
			return err
		}
		return writeJSON(out, profile)
	}
	profiles, err := a.Workers.List(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, profiles)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	negative := strings.HasPrefix(trimmed, "-")
	amount, ok := money.Parse(strings.TrimPrefix(trimmed, "-"))
	if !ok {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid -amount %q", raw)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
