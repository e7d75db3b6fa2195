package renderer

import (
	"bytes"
	"fmt"

	"github.com/coinfolio/coinfolio"
	md "github.com/nao1215/markdown"
)

// TransactionsMarkdown renders a transaction listing as a markdown table,
// in the order the listing came in.
func TransactionsMarkdown(txs []coinfolio.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Transactions (%d)", len(txs)))

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.When().Format("2006-01-02 15:04"),
			string(tx.What()),
			coinfolio.Describe(tx),
			tx.Ref(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Type", "Detail", "ID"},
		Rows:   rows,
	})
	return doc.String()
}
