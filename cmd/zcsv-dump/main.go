// Command zcsv-dump iterates a CSV file and prints every field it sees,
// one line per field, as a quick way to inspect how a file actually
// tokenizes under RFC 4180 rules.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shapestone/zcsv"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.csv>\n", os.Args[0])
		os.Exit(2)
	}

	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dump(path string) error {
	src, err := zcsv.NewFileSource(path, 0)
	if err != nil {
		return err
	}
	defer src.Close()

	it := zcsv.NewIterator(src, zcsv.DefaultDialect())

	row, col := 1, 1
	for {
		field, err := it.Next()
		if errors.Is(err, zcsv.ErrEndOfInput) {
			return nil
		}
		if err != nil {
			return err
		}

		data := field.Data()
		if field.NeedsUnescape() {
			data = field.Unescape()
		}
		fmt.Printf("field[%d][%d] = |%s|\n", row, col, data)

		if field.LastColumn() {
			row++
			col = 1
		} else {
			col++
		}
	}
}
