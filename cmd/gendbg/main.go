package main

import (
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/bert-trt-helpers/pkg/fixture"
)

func main() {
	fs := flag.NewFlagSet("gendbg", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Generate debug input/output pairs\n\nUsage: gendbg -o DIR -s SEQLEN -b BATCHSIZE [-r SEED]\n\n")
		fs.PrintDefaults()
	}

	output := fs.StringP("output", "o", "", fmt.Sprintf("The directory to dump the data to. Creates the input file %s; the reference output %s comes from a separate run.", fixture.TestInputFileName, fixture.TestOutputFileName))
	seqLen := fs.IntP("seqlen", "s", 0, "The sequence length of the generated inputs")
	batchSize := fs.IntP("batchsize", "b", 0, "The batch size of the generated inputs")
	seed := fs.Int64P("randomseed", "r", fixture.DefaultSeed, "Seed for PRNG")
	indexSuffix := fs.Bool("index-suffix", false, `Name records "<name>_0" instead of "<name>"`)
	fs.Parse(os.Args[1:])

	if *output == "" || !fs.Changed("seqlen") || !fs.Changed("batchsize") {
		fs.Usage()
		os.Exit(2)
	}

	path, err := fixture.WriteFile(fixture.Options{
		OutputDir:   *output,
		SeqLen:      *seqLen,
		BatchSize:   *batchSize,
		Seed:        *seed,
		IndexSuffix: *indexSuffix,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", path)
}
