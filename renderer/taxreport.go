package renderer

import (
	"bytes"
	"fmt"

	"github.com/coinfolio/coinfolio"
	md "github.com/nao1215/markdown"
)

// TaxReportMarkdown renders a yearly tax report: the gains summary, the
// per-asset totals, every lot-level disposal and the income events.
func TaxReportMarkdown(r *coinfolio.TaxReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Tax Report %d", r.Year))
	doc.BulletList(
		fmt.Sprintf("Short-term gains: %s", signed(r.ShortTermGain)),
		fmt.Sprintf("Long-term gains: %s", signed(r.LongTermGain)),
		fmt.Sprintf("Total gains: %s", signed(r.TotalGain)),
		fmt.Sprintf("Income: %s", money(r.TotalIncome)),
		fmt.Sprintf("Fee expenses: %s", money(r.FeeExpense)),
	)

	if len(r.ByAsset) > 0 {
		doc.H2("Per Asset")
		rows := make([][]string, 0, len(r.ByAsset))
		for _, total := range r.ByAsset {
			rows = append(rows, []string{total.Asset, signed(total.Gain), money(total.Income)})
		}
		doc.Table(md.TableSet{
			Header: []string{"Asset", "Gain", "Income"},
			Rows:   rows,
		})
	}

	if len(r.Disposals) > 0 {
		doc.H2("Disposals")
		rows := make([][]string, 0, len(r.Disposals))
		for _, d := range r.Disposals {
			acquired := "n/a"
			if !d.AcquiredAt.IsZero() {
				acquired = d.AcquiredAt.Format("2006-01-02")
			}
			term := "short"
			if d.LongTerm {
				term = "long"
			}
			rows = append(rows, []string{
				d.DisposedAt.Format("2006-01-02"),
				d.Asset,
				d.Quantity.String(),
				acquired,
				money(d.Proceeds),
				money(d.Cost),
				signed(d.Gain),
				term,
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Disposed", "Asset", "Quantity", "Acquired", "Proceeds", "Cost", "Gain", "Term"},
			Rows:   rows,
		})
	}

	if len(r.Income) > 0 {
		doc.H2("Income")
		rows := make([][]string, 0, len(r.Income))
		for _, ev := range r.Income {
			rows = append(rows, []string{
				ev.ReceivedAt.Format("2006-01-02"),
				ev.Asset,
				string(ev.Type),
				ev.Quantity.String(),
				money(ev.Value),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Received", "Asset", "Type", "Quantity", "Value"},
			Rows:   rows,
		})
	}

	return doc.String()
}
