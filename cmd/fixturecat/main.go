package main

import (
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/bert-trt-helpers/pkg/tensorfile"
)

func main() {
	fs := flag.NewFlagSet("fixturecat", flag.ExitOnError)
	values := fs.IntP("values", "n", 8, "Number of leading values to print per int32 record")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fixturecat [-n N] FILE")
		os.Exit(2)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	records, err := tensorfile.Read(f)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d records\n", len(records))
	for _, rec := range records {
		fmt.Printf("%s\t%s\tshape=%v\tbytes=%d\n", rec.Name, rec.DType, rec.Shape, len(rec.Data))
		if rec.DType != tensorfile.Int32 || *values <= 0 {
			continue
		}
		vals, err := rec.Int32s()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\t%v\n", vals[:min(*values, len(vals))])
	}
}
