// Command ledgerctl inspects and settles group ledgers directly against the
// server's SQLite database.
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("ledgerctl"),
		kong.Description("Inspect balances and record settlements in a splitledger database."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	}, options...)
	return kong.New(cli, options...)
}
