package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"siuang/internal/aggregate"
	"siuang/internal/core"
	"siuang/internal/services"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed input: bad JSON or unparseable query values.
var errBadRequest = errors.New("bad request")

// amountInput accepts an amount as a JSON number or a JSON string, so both
// 12.5 and "12,50" reach core.ParseAmount unchanged.
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountInput(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	*a = amountInput(n.String())
	return nil
}

type transactionRequest struct {
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	Category string      `json:"category" validate:"max=100"`
	Amount   amountInput `json:"amount" validate:"required"`
	Note     string      `json:"note" validate:"max=200"`
	IsIncome bool        `json:"is_income"`
}

func (r transactionRequest) toInput() (services.NewTransaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return services.NewTransaction{}, err
	}
	amount, err := core.ParseAmount(string(r.Amount))
	if err != nil {
		return services.NewTransaction{}, err
	}
	return services.NewTransaction{
		Date:     date,
		Category: sanitizeInput(r.Category),
		Amount:   amount,
		Note:     sanitizeInput(r.Note),
		IsIncome: r.IsIncome,
	}, nil
}

type exportRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Category  string `json:"category" validate:"max=100"`
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}

// validationErrors maps field name to the failed rule.
func validationErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "is required"
		case "datetime":
			out[fe.Field()] = "must be a date in YYYY-MM-DD format"
		case "max":
			out[fe.Field()] = "must be at most " + fe.Param() + " characters"
		default:
			out[fe.Field()] = "failed " + fe.Tag()
		}
	}
	return out
}

// viewParams holds the parsed view selection of a query string.
type viewParams struct {
	Granularity aggregate.Granularity
	Order       aggregate.SortOrder
	Focus       aggregate.Focus
}

// parseViewParams reads view, sort, year, month and day. An empty view falls
// back to def.
func parseViewParams(q url.Values, def aggregate.Granularity) (viewParams, error) {
	var p viewParams
	var err error

	if v := strings.TrimSpace(q.Get("view")); v == "" {
		p.Granularity = def
	} else if p.Granularity, err = aggregate.ParseGranularity(v); err != nil {
		return p, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if p.Order, err = aggregate.ParseSortOrder(q.Get("sort")); err != nil {
		return p, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if p.Focus, err = parseFocus(q); err != nil {
		return p, err
	}
	return p, nil
}

func parseFocus(q url.Values) (aggregate.Focus, error) {
	year, err := queryInt(q, "year", 1, 9999)
	if err != nil {
		return aggregate.Focus{}, err
	}
	month, err := queryInt(q, "month", 1, 12)
	if err != nil {
		return aggregate.Focus{}, err
	}
	day, err := queryInt(q, "day", 1, 31)
	if err != nil {
		return aggregate.Focus{}, err
	}
	return aggregate.Focus{Year: year, Month: time.Month(month), Day: day}, nil
}

// queryInt returns 0 when the key is absent.
func queryInt(q url.Values, key string, lo, hi int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", errBadRequest, key, lo, hi)
	}
	return n, nil
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
