// journal/journal.go
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Result is the outcome of a closed trade. The zero value means the trade
// has no result yet (still open).
type Result string

const (
	Win       Result = "win"
	Loss      Result = "loss"
	Breakeven Result = "breakeven"
)

func (r Result) valid() bool {
	switch r {
	case "", Win, Loss, Breakeven:
		return true
	}
	return false
}

// Method is a named trading strategy. UsageCount, WinRate and TotalPnL are
// derived from the trades referencing the method and are owned by Maintainer.
type Method struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	IsDefault   bool    `json:"is_default"`
	UsageCount  int     `json:"usage_count"`
	WinRate     float64 `json:"win_rate"`
	TotalPnL    float64 `json:"total_pnl"`
}

// MethodPatch is a partial update of a method. Nil fields are left unchanged.
type MethodPatch struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   *bool   `json:"is_default,omitempty"`
}

// Trade is one logged round trip. Optional numeric fields are nil when unset;
// empty strings stand for NULL in EntryTime, ExitTime, MethodID, Notes and Result.
type Trade struct {
	ID             int64     `json:"id"`
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"direction"`
	EntryPrice     *float64  `json:"entryPrice,omitempty"`
	ExitPrice      *float64  `json:"exitPrice,omitempty"`
	EntryTime      string    `json:"entryTime,omitempty"`
	ExitTime       string    `json:"exitTime,omitempty"`
	Lots           *float64  `json:"lots,omitempty"`
	Profit         *float64  `json:"profit,omitempty"`
	ExpectedProfit *float64  `json:"expectedProfit,omitempty"`
	MethodID       string    `json:"methodId,omitempty"`
	MethodName     string    `json:"methodName"`
	Notes          string    `json:"notes,omitempty"`
	Tags           []string  `json:"tags"`
	Result         Result    `json:"result,omitempty"`
}

// TradeFilter narrows List. Empty fields are ignored; set fields are ANDed.
// StartDate and EndDate bound entryTime inclusively. A date-only EndDate
// (YYYY-MM-DD) includes the whole day.
type TradeFilter struct {
	Symbol    string `json:"symbol,omitempty"`
	MethodID  string `json:"methodId,omitempty"`
	Result    Result `json:"result,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// methodRow mirrors a methods row. id is nullable because SQLite permits NULL
// in non-integer primary keys.
type methodRow struct {
	ID          sql.NullString
	Code        string
	Name        string
	Description sql.NullString
	IsDefault   bool
	UsageCount  int
	WinRate     float64
	TotalPnL    float64
}

func (r methodRow) method() Method {
	return Method{
		ID:          r.ID.String,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description.String,
		IsDefault:   r.IsDefault,
		UsageCount:  r.UsageCount,
		WinRate:     r.WinRate,
		TotalPnL:    r.TotalPnL,
	}
}

// tradeRow mirrors a trades row.
type tradeRow struct {
	ID             int64
	Symbol         string
	Direction      string
	EntryPrice     sql.NullFloat64
	ExitPrice      sql.NullFloat64
	EntryTime      sql.NullString
	ExitTime       sql.NullString
	Lots           sql.NullFloat64
	Profit         sql.NullFloat64
	ExpectedProfit sql.NullFloat64
	MethodID       sql.NullString
	MethodName     string
	Notes          sql.NullString
	Tags           sql.NullString
	Result         sql.NullString
}

func (r tradeRow) trade() (Trade, error) {
	tags, err := decodeTags(r.Tags.String)
	if err != nil {
		return Trade{}, fmt.Errorf("trade %d: %w", r.ID, err)
	}
	return Trade{
		ID:             r.ID,
		Symbol:         r.Symbol,
		Direction:      Direction(r.Direction),
		EntryPrice:     floatPtr(r.EntryPrice),
		ExitPrice:      floatPtr(r.ExitPrice),
		EntryTime:      r.EntryTime.String,
		ExitTime:       r.ExitTime.String,
		Lots:           floatPtr(r.Lots),
		Profit:         floatPtr(r.Profit),
		ExpectedProfit: floatPtr(r.ExpectedProfit),
		MethodID:       r.MethodID.String,
		MethodName:     r.MethodName,
		Notes:          r.Notes.String,
		Tags:           tags,
		Result:         Result(r.Result.String),
	}, nil
}

// encodeTags serializes tags as a JSON array. Nil encodes as "[]".
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if strings.TrimSpace(s) == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags %q: %w", s, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
