package coinfolio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestLedger(t)
	mustAdd(t, src, NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, src, NewSell("", "BTC", Q(0.5), usd(30000), date(2024, time.March, 1)))
	mustAdd(t, src, NewConvert("", "ETH", Q(2), "SOL", Q(50), date(2024, time.April, 1)))

	var buf bytes.Buffer
	require.NoError(t, src.ExportTransactions(&buf, Query{Ascending: true}))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))

	dst := newTestLedger(t)
	added, err := dst.ImportTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// Ids survived the round trip and so did the derived state.
	for _, tx := range src.Transactions(Query{}) {
		got, err := dst.Transaction(tx.Ref())
		require.NoError(t, err)
		assert.Equal(t, tx.What(), got.What())
		assert.True(t, tx.base().Amount.Equal(got.base().Amount))
		assert.Equal(t, tx.When(), got.When())
	}
	assert.True(t, dst.Balance("BTC", "").Equal(src.Balance("BTC", "")))
	assert.True(t, dst.Balance("SOL", "").Equal(Q(50)))
}

func TestImportRejectsGarbageLine(t *testing.T) {
	dst := newTestLedger(t)
	input := strings.Join([]string{
		`{"id":"A","type":"buy","asset":"BTC","amount":1,"price":10,"fee":0,"fiatCurrency":"USD","portfolioId":"","timestamp":"2024-01-01T00:00:00Z","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`,
		`not json`,
	}, "\n")

	added, err := dst.ImportTransactions(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	// The first line was committed before the bad one aborted the run.
	assert.Equal(t, 1, added)
	assert.True(t, dst.Balance("BTC", "").Equal(Q(1)))
}

func TestExportHonorsQuery(t *testing.T) {
	l := newTestLedger(t)
	mustAdd(t, l, NewBuy("", "BTC", Q(1), usd(10000), date(2024, time.January, 1)))
	mustAdd(t, l, NewBuy("", "ETH", Q(1), usd(2000), date(2024, time.February, 1)))

	var buf bytes.Buffer
	require.NoError(t, l.ExportTransactions(&buf, Query{Asset: "ETH"}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"asset":"ETH"`)
}
