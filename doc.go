// Package coinfolio is a transaction ledger for crypto assets.
//
// The ledger records typed transactions (buys, sells, transfers, converts,
// rewards and more), groups them into portfolios and derives everything else
// from the log: balances, FIFO cost basis, market valuations and yearly tax
// reports. Derived state can always be rebuilt by replaying the log in
// event-timestamp order, so the answers never depend on the order entries
// were recorded in.
//
// Amounts are decimal end to end. Quantity counts asset units and Money
// counts fiat; neither rounds until formatted for display.
package coinfolio
