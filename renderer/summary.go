package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/coinfolio/coinfolio"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders a portfolio summary as a markdown document with
// one table row per held asset. Assets excluded for want of a price are
// called out below the table.
func SummaryMarkdown(s *coinfolio.PortfolioSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Summary on %s", s.Snapshot.TakenAt.Format("2006-01-02 15:04 MST")))
	doc.PlainText(fmt.Sprintf("Total Market Value: %s", money(s.TotalValue)))

	rows := make([][]string, 0, len(s.Lines))
	for _, line := range s.Lines {
		if line.PriceUnavailable {
			rows = append(rows, []string{
				line.Asset, line.Balance.String(), "n/a", "n/a", "n/a", "n/a", "n/a",
			})
			continue
		}
		rows = append(rows, []string{
			line.Asset,
			line.Balance.String(),
			money(line.Price),
			money(line.Value),
			percent(line.Allocation),
			money(line.AverageCost),
			signed(line.Unrealized),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Asset", "Balance", "Price", "Value", "Allocation", "Avg Cost", "Unrealized"},
		Rows:   rows,
	})

	doc.H2("Profit & Loss")
	doc.BulletList(
		fmt.Sprintf("Unrealized: %s", signed(s.TotalUnrealized)),
		fmt.Sprintf("Realized: %s", signed(s.TotalRealized)),
	)

	if len(s.Excluded) > 0 {
		doc.PlainText(fmt.Sprintf("No market price for %s; excluded from totals.",
			strings.Join(s.Excluded, ", ")))
	}

	return doc.String()
}
