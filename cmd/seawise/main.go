// Command seawise estimates hull fouling from the command line.
//
//	seawise estimate --temp 25 --salinity 35 --speed 12 --days 30
//	seawise simulate --seed 7 --count 5 --days 45
//	seawise variants
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
