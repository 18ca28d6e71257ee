package postgres

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// limitArg turns a non-positive limit into LIMIT NULL, which Postgres treats as no limit.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}

// numeric columns are selected as text and parsed here to keep quarter days exact.
func parseNumeric(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
