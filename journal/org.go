package journal

import (
	"fmt"
	"strings"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; the notes land under Review.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade #%d: %s %s", t.ID, t.Symbol, t.Direction)
	if t.Result != "" {
		heading += fmt.Sprintf(" [%s]", t.Result)
	}
	if tags := orgTags(t.Tags); len(tags) > 0 {
		heading += "    :" + strings.Join(tags, ":") + ":"
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %d\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	writeOrgFloat(&b, "LOTS", t.Lots, "%.2f")
	writeOrgFloat(&b, "ENTRY_PRICE", t.EntryPrice, "%.5f")
	writeOrgFloat(&b, "EXIT_PRICE", t.ExitPrice, "%.5f")
	if t.EntryTime != "" {
		b.WriteString(fmt.Sprintf(":ENTRY_TIME: %s\n", t.EntryTime))
	}
	if t.ExitTime != "" {
		b.WriteString(fmt.Sprintf(":EXIT_TIME: %s\n", t.ExitTime))
	}
	writeOrgFloat(&b, "PROFIT", t.Profit, "%.2f")
	writeOrgFloat(&b, "EXPECTED_PROFIT", t.ExpectedProfit, "%.2f")
	b.WriteString(fmt.Sprintf(":METHOD: %s\n", t.MethodName))
	if t.MethodID != "" {
		b.WriteString(fmt.Sprintf(":METHOD_ID: %s\n", t.MethodID))
	}
	if t.Result != "" {
		b.WriteString(fmt.Sprintf(":RESULT: %s\n", t.Result))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n")
	if t.Notes != "" {
		for _, line := range strings.Split(t.Notes, "\n") {
			b.WriteString("- " + line + "\n")
		}
	} else {
		b.WriteString("- \n")
	}

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func writeOrgFloat(b *strings.Builder, key string, v *float64, format string) {
	if v == nil {
		return
	}
	b.WriteString(fmt.Sprintf(":%s: "+format+"\n", key, *v))
}

// orgTags makes tags safe for an Org heading, where tags cannot contain
// spaces or colons.
func orgTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.NewReplacer(" ", "_", ":", "_").Replace(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
